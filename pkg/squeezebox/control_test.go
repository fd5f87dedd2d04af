// ABOUTME: Tests for the one-shot player commands
// ABOUTME: Asserts the exact command vectors sent over the wire
package squeezebox

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rajlaud/squeezebox-go/internal/lmstest"
)

// lastRequest returns the final command vector the fake server saw.
func lastRequest(t *testing.T, fake *lmstest.Server) []string {
	t.Helper()
	requests := fake.Requests()
	if len(requests) == 0 {
		t.Fatal("no requests recorded")
	}
	return requests[len(requests)-1]
}

func controlPlayer(t *testing.T) (*Player, *lmstest.Server) {
	t.Helper()
	server, fake := newTestServer(t, twoPlayers()...)
	player, err := server.PlayerByName(context.Background(), "Bedroom")
	if err != nil || player == nil {
		t.Fatalf("PlayerByName failed: %v, %v", player, err)
	}
	return player, fake
}

func TestCommandVectors(t *testing.T) {
	player, fake := controlPlayer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want []string
	}{
		{"play", func() error { return player.Play(ctx) }, []string{"play"}},
		{"stop", func() error { return player.Stop(ctx) }, []string{"stop"}},
		{"pause", func() error { return player.Pause(ctx) }, []string{"pause", "1"}},
		{"unpause", func() error { return player.Unpause(ctx) }, []string{"pause", "0"}},
		{"toggle pause", func() error { return player.TogglePause(ctx) }, []string{"pause"}},
		{"set volume", func() error { return player.SetVolume(ctx, 42) }, []string{"mixer", "volume", "42"}},
		{"volume up", func() error { return player.ChangeVolume(ctx, 5) }, []string{"mixer", "volume", "+5"}},
		{"volume down", func() error { return player.ChangeVolume(ctx, -5) }, []string{"mixer", "volume", "-5"}},
		{"mute", func() error { return player.SetMuting(ctx, true) }, []string{"mixer", "muting", "1"}},
		{"unmute", func() error { return player.SetMuting(ctx, false) }, []string{"mixer", "muting", "0"}},
		{"power on", func() error { return player.SetPower(ctx, true) }, []string{"power", "1"}},
		{"power off", func() error { return player.SetPower(ctx, false) }, []string{"power", "0"}},
		{"next", func() error { return player.Next(ctx) }, []string{"playlist", "index", "+1"}},
		{"previous", func() error { return player.Previous(ctx) }, []string{"playlist", "index", "-1"}},
		{"set index", func() error { return player.SetIndex(ctx, 7) }, []string{"playlist", "index", "7"}},
		{"seek", func() error { return player.Seek(ctx, 90*time.Second) }, []string{"time", "90"}},
		{"seek fractional", func() error { return player.Seek(ctx, 1500*time.Millisecond) }, []string{"time", "1.5"}},
		{"shuffle albums", func() error { return player.SetShuffle(ctx, ShuffleAlbum) }, []string{"playlist", "shuffle", "2"}},
		{"repeat off", func() error { return player.SetRepeat(ctx, RepeatOff) }, []string{"playlist", "repeat", "0"}},
		{"clear playlist", func() error { return player.ClearPlaylist(ctx) }, []string{"playlist", "clear"}},
		{"load url", func() error { return player.LoadURL(ctx, "file:///a.flac", ActionLoad) }, []string{"playlist", "load", "file:///a.flac"}},
		{"unsync", func() error { return player.Unsync(ctx) }, []string{"sync", "-"}},
		{"sync to", func() error { return player.SyncTo(ctx, "aa:bb:cc:dd:ee:ff") }, []string{"sync", "aa:bb:cc:dd:ee:ff"}},
	}

	for _, tt := range tests {
		if err := tt.call(); err != nil {
			t.Errorf("%s failed: %v", tt.name, err)
			continue
		}
		if diff := cmp.Diff(tt.want, lastRequest(t, fake)); diff != "" {
			t.Errorf("%s command mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestSetVolumeClamps(t *testing.T) {
	player, fake := controlPlayer(t)
	ctx := context.Background()

	if err := player.SetVolume(ctx, 150); err != nil {
		t.Fatalf("SetVolume failed: %v", err)
	}
	if got := lastRequest(t, fake); got[2] != "100" {
		t.Errorf("expected volume clamped to 100, got %q", got[2])
	}

	if err := player.SetVolume(ctx, -10); err != nil {
		t.Fatalf("SetVolume failed: %v", err)
	}
	if got := lastRequest(t, fake); got[2] != "0" {
		t.Errorf("expected volume clamped to 0, got %q", got[2])
	}
}

func TestInvalidModes(t *testing.T) {
	player, fake := controlPlayer(t)
	ctx := context.Background()
	before := len(fake.Requests())

	if err := player.SetShuffle(ctx, "random"); err == nil {
		t.Error("expected error for invalid shuffle mode")
	}
	if err := player.SetRepeat(ctx, "forever"); err == nil {
		t.Error("expected error for invalid repeat mode")
	}
	if err := player.LoadURL(ctx, "file:///a.flac", "replace"); err == nil {
		t.Error("expected error for invalid load action")
	}
	if err := player.SyncTo(ctx, ""); err == nil {
		t.Error("expected error for empty sync target")
	}

	// Invalid input is rejected before anything goes over the wire.
	if after := len(fake.Requests()); after != before {
		t.Errorf("expected no requests for invalid input, got %d new", after-before)
	}
}

func TestLoadPlaylist(t *testing.T) {
	urls := []string{"file:///a.flac", "", "file:///b.flac", "file:///c.flac"}

	tests := []struct {
		name   string
		action LoadAction
		want   [][]string
	}{
		{
			name:   "load plays first then adds rest",
			action: ActionLoad,
			want: [][]string{
				{"playlist", "play", "file:///a.flac"},
				{"playlist", "add", "file:///b.flac"},
				{"playlist", "add", "file:///c.flac"},
			},
		},
		{
			name:   "add appends all",
			action: ActionAdd,
			want: [][]string{
				{"playlist", "add", "file:///a.flac"},
				{"playlist", "add", "file:///b.flac"},
				{"playlist", "add", "file:///c.flac"},
			},
		},
		{
			name:   "insert queues in order",
			action: ActionInsert,
			want: [][]string{
				{"playlist", "insert", "file:///c.flac"},
				{"playlist", "insert", "file:///b.flac"},
				{"playlist", "insert", "file:///a.flac"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player, fake := controlPlayer(t)
			before := len(fake.Requests())

			if err := player.LoadPlaylist(context.Background(), urls, tt.action); err != nil {
				t.Fatalf("LoadPlaylist failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, fake.Requests()[before:]); diff != "" {
				t.Errorf("command sequence mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadPlaylistEmpty(t *testing.T) {
	player, _ := controlPlayer(t)

	if err := player.LoadPlaylist(context.Background(), []string{"", ""}, ActionLoad); err == nil {
		t.Error("expected error for playlist with no playable URLs")
	}
}
