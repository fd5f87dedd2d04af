// ABOUTME: Track type parsed from LMS playlist and remote metadata entries
// ABOUTME: Tolerates the mixed field encodings different LMS versions produce
package squeezebox

import (
	"time"

	"github.com/rajlaud/squeezebox-go/pkg/slimrpc"
)

// Track is one playlist entry or the metadata of a remote stream. Fields the
// server did not report are left at their zero values.
type Track struct {
	URL         string
	Title       string
	Artist      string
	Album       string
	Type        string
	Bitrate     string
	SampleRate  int
	SampleSize  int
	Duration    time.Duration
	CoverID     string
	RemoteTitle string
	ArtworkURL  string
}

// trackFromResult builds a Track from a playlist_loop entry or remoteMeta
// object.
func trackFromResult(r slimrpc.Result) Track {
	var t Track
	t.URL, _ = r.String("url")
	t.Title, _ = r.String("title")
	t.Artist, _ = r.String("artist")
	t.Album, _ = r.String("album")
	t.Type, _ = r.String("type")
	t.Bitrate, _ = r.String("bitrate")
	t.SampleRate, _ = r.Int("samplerate")
	t.SampleSize, _ = r.Int("samplesize")
	t.CoverID, _ = r.String("coverid")
	t.RemoteTitle, _ = r.String("remote_title")
	t.ArtworkURL, _ = r.String("artwork_url")
	if seconds, ok := r.Float("duration"); ok {
		t.Duration = time.Duration(seconds * float64(time.Second))
	}
	return t
}
