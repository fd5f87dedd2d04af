// ABOUTME: One-shot playback commands for a Player
// ABOUTME: Commands fire and forget; Update observes their effect
package squeezebox

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// LoadAction selects how LoadURL and LoadPlaylist treat the current playlist.
type LoadAction string

const (
	// ActionLoad replaces the current playlist and starts playing.
	ActionLoad LoadAction = "load"

	// ActionPlay is the LMS synonym for ActionLoad.
	ActionPlay LoadAction = "play"

	// ActionInsert queues next in the playlist.
	ActionInsert LoadAction = "insert"

	// ActionAdd appends to the end of the playlist.
	ActionAdd LoadAction = "add"
)

// Play starts playback.
func (p *Player) Play(ctx context.Context) error {
	return p.Command(ctx, "play")
}

// Stop stops playback.
func (p *Player) Stop(ctx context.Context) error {
	return p.Command(ctx, "stop")
}

// Pause pauses playback.
func (p *Player) Pause(ctx context.Context) error {
	return p.Command(ctx, "pause", "1")
}

// Unpause resumes paused playback.
func (p *Player) Unpause(ctx context.Context) error {
	return p.Command(ctx, "pause", "0")
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause(ctx context.Context) error {
	return p.Command(ctx, "pause")
}

// SetVolume sets the volume level. The level is clamped to 0..100.
func (p *Player) SetVolume(ctx context.Context, volume int) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	return p.Command(ctx, "mixer", "volume", strconv.Itoa(volume))
}

// ChangeVolume adjusts the volume by a relative amount, positive or negative.
func (p *Player) ChangeVolume(ctx context.Context, delta int) error {
	return p.Command(ctx, "mixer", "volume", fmt.Sprintf("%+d", delta))
}

// SetMuting mutes (true) or unmutes (false) the player.
func (p *Player) SetMuting(ctx context.Context, mute bool) error {
	return p.Command(ctx, "mixer", "muting", boolParam(mute))
}

// SetPower switches the player on (true) or off (false).
func (p *Player) SetPower(ctx context.Context, power bool) error {
	return p.Command(ctx, "power", boolParam(power))
}

// Next skips to the next playlist entry.
func (p *Player) Next(ctx context.Context) error {
	return p.Command(ctx, "playlist", "index", "+1")
}

// Previous returns to the previous playlist entry.
func (p *Player) Previous(ctx context.Context) error {
	return p.Command(ctx, "playlist", "index", "-1")
}

// SetIndex jumps to the given playlist position.
func (p *Player) SetIndex(ctx context.Context, index int) error {
	return p.Command(ctx, "playlist", "index", strconv.Itoa(index))
}

// Seek moves the playback position within the current track. The player must
// be playing or paused for the server to act on it.
func (p *Player) Seek(ctx context.Context, position time.Duration) error {
	return p.Command(ctx, "time", strconv.FormatFloat(position.Seconds(), 'f', -1, 64))
}

// SetShuffle sets the shuffle mode to ShuffleOff, ShuffleSong, or
// ShuffleAlbum.
func (p *Player) SetShuffle(ctx context.Context, mode string) error {
	for i, m := range shuffleModes {
		if m == mode {
			return p.Command(ctx, "playlist", "shuffle", strconv.Itoa(i))
		}
	}
	return fmt.Errorf("squeezebox: invalid shuffle mode %q", mode)
}

// SetRepeat sets the repeat mode to RepeatOff, RepeatSong, or RepeatPlaylist.
func (p *Player) SetRepeat(ctx context.Context, mode string) error {
	for i, m := range repeatModes {
		if m == mode {
			return p.Command(ctx, "playlist", "repeat", strconv.Itoa(i))
		}
	}
	return fmt.Errorf("squeezebox: invalid repeat mode %q", mode)
}

// ClearPlaylist removes every entry from the current playlist.
func (p *Player) ClearPlaylist(ctx context.Context) error {
	return p.Command(ctx, "playlist", "clear")
}

// LoadURL loads a single track by URL according to action.
func (p *Player) LoadURL(ctx context.Context, url string, action LoadAction) error {
	switch action {
	case ActionLoad, ActionPlay, ActionInsert, ActionAdd:
	default:
		return fmt.Errorf("squeezebox: invalid load action %q", action)
	}
	return p.Command(ctx, "playlist", string(action), url)
}

// LoadPlaylist loads a list of track URLs according to action. ActionLoad and
// ActionPlay replace the current playlist with the given tracks; ActionInsert
// queues them next, in order; ActionAdd appends them. Empty URLs are skipped.
func (p *Player) LoadPlaylist(ctx context.Context, urls []string, action LoadAction) error {
	playable := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" {
			playable = append(playable, u)
		}
	}
	if len(playable) == 0 {
		return fmt.Errorf("squeezebox: no playable URLs in playlist")
	}

	if action == ActionInsert {
		// Inserting queues each track directly after the current one, so
		// walk the list backwards to keep the original order.
		for i := len(playable) - 1; i >= 0; i-- {
			if err := p.LoadURL(ctx, playable[i], ActionInsert); err != nil {
				return err
			}
		}
		return nil
	}

	if action == ActionLoad || action == ActionPlay {
		if err := p.LoadURL(ctx, playable[0], ActionPlay); err != nil {
			return err
		}
		playable = playable[1:]
	} else if action != ActionAdd {
		return fmt.Errorf("squeezebox: invalid load action %q", action)
	}

	for _, u := range playable {
		if err := p.LoadURL(ctx, u, ActionAdd); err != nil {
			return err
		}
	}
	return nil
}

// SyncTo adds this player to the sync group of the player with the given ID.
// If this player already belongs to a sync group it leaves it first.
func (p *Player) SyncTo(ctx context.Context, otherID string) error {
	if otherID == "" {
		return fmt.Errorf("squeezebox: SyncTo called without a player ID")
	}
	return p.Command(ctx, "sync", otherID)
}

// Unsync removes this player from its sync group.
func (p *Player) Unsync(ctx context.Context) error {
	return p.Command(ctx, "sync", "-")
}

func boolParam(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
