// ABOUTME: Tests for Result accessor helpers
// ABOUTME: Covers the mixed numeric/string encodings LMS produces
package slimrpc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// decode parses a result object the way the client does.
func decode(t *testing.T, body string) Result {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	var r Result
	if err := dec.Decode(&r); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return r
}

func TestResultString(t *testing.T) {
	r := decode(t, `{"mode":"play","playlist_tracks":12,"remote":null}`)

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"mode", "play", true},
		{"playlist_tracks", "12", true},
		{"remote", "", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		got, ok := r.String(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("String(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestResultNumbers(t *testing.T) {
	// "mixer volume" comes back as a string, "time" as a float, counters as
	// integers. All must coerce.
	r := decode(t, `{"mixer volume":"-43","time":66.91,"playlist_tracks":5,"name":"Bedroom"}`)

	if v, ok := r.Int("mixer volume"); !ok || v != -43 {
		t.Errorf("Int(mixer volume) = %d, %v; want -43, true", v, ok)
	}
	if v, ok := r.Float("time"); !ok || v != 66.91 {
		t.Errorf("Float(time) = %v, %v; want 66.91, true", v, ok)
	}
	if v, ok := r.Int("time"); !ok || v != 66 {
		t.Errorf("Int(time) = %d, %v; want 66, true", v, ok)
	}
	if v, ok := r.Int("playlist_tracks"); !ok || v != 5 {
		t.Errorf("Int(playlist_tracks) = %d, %v; want 5, true", v, ok)
	}
	if _, ok := r.Int("name"); ok {
		t.Error("Int(name) should not coerce a non-numeric string")
	}
	if _, ok := r.Float("missing"); ok {
		t.Error("Float(missing) should report absence")
	}
}

func TestResultNested(t *testing.T) {
	r := decode(t, `{
		"remoteMeta": {"title": "News Hour"},
		"playlist_loop": [
			{"title": "One", "url": "file:///one.flac"},
			"bogus entry",
			{"title": "Two", "url": "file:///two.flac"}
		]
	}`)

	meta, ok := r.Map("remoteMeta")
	if !ok {
		t.Fatal("expected remoteMeta to be a nested object")
	}
	if title, _ := meta.String("title"); title != "News Hour" {
		t.Errorf("expected title News Hour, got %q", title)
	}

	loop, ok := r.Maps("playlist_loop")
	if !ok {
		t.Fatal("expected playlist_loop to be a list")
	}
	// The non-object entry is skipped.
	if len(loop) != 2 {
		t.Fatalf("expected 2 playlist entries, got %d", len(loop))
	}
	want := []string{"One", "Two"}
	var got []string
	for _, entry := range loop {
		title, _ := entry.String("title")
		got = append(got, title)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("playlist titles mismatch (-want +got):\n%s", diff)
	}

	if _, ok := r.Maps("remoteMeta"); ok {
		t.Error("Maps should reject a non-array value")
	}
	if _, ok := r.Map("playlist_loop"); ok {
		t.Error("Map should reject a non-object value")
	}
}
