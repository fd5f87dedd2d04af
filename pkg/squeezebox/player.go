// ABOUTME: Player facade for one squeezebox device
// ABOUTME: Fetches status snapshots and derives playback state from them
package squeezebox

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/rajlaud/squeezebox-go/pkg/slimrpc"
)

// statusTags selects the track fields LMS includes in status responses.
const statusTags = "acdIKlNorTuxQ"

var (
	shuffleModes = []string{ShuffleOff, ShuffleSong, ShuffleAlbum}
	repeatModes  = []string{RepeatOff, RepeatSong, RepeatPlaylist}
)

// Shuffle modes reported and accepted by LMS.
const (
	ShuffleOff   = "none"
	ShuffleSong  = "song"
	ShuffleAlbum = "album"
)

// Repeat modes reported and accepted by LMS.
const (
	RepeatOff      = "none"
	RepeatSong     = "song"
	RepeatPlaylist = "playlist"
)

// Player mirrors one playback device connected to a Server. The state it
// exposes is a passive snapshot of the device's last known status: Update
// replaces the snapshot wholesale, and every getter reads the latest one.
// Nothing is fetched implicitly.
type Player struct {
	server *Server

	id        string
	name      string
	model     string
	modelType string
	firmware  string
	creator   string

	status        slimrpc.Result
	alarms        []Alarm
	alarmsEnabled bool
}

func newPlayer(server *Server, id, name, model, modelType, firmware string) *Player {
	return &Player{
		server:    server,
		id:        id,
		name:      name,
		model:     model,
		modelType: modelType,
		firmware:  firmware,
		creator:   creatorForModel(model, modelType, firmware),
		status:    slimrpc.Result{},
	}
}

// creatorForModel maps a player model to the people behind it.
func creatorForModel(model, modelType, firmware string) string {
	squeezelite := ", Ralph Irving & Adrian Smith"
	var creator string

	switch {
	case model == "":
	case model == "SqueezePlayer":
		creator = "Stefan Hansel"
	case model == "Squeezelite-X":
		creator = "R G Dawson"
	case model == "SqueezeLite-HA-Addon":
		creator = "pssc"
	case model == "RaopBridge", model == "CastBridge":
		creator = "philippe"
	case model == "SB Player":
		creator = "Wayne Tam"
	case model == "WiiM Player":
		creator = "LinkPlay"
	case strings.Contains(model, "Squeezebox"),
		strings.Contains(model, "Transporter"),
		strings.Contains(model, "Slim"),
		strings.Contains(model, "Jive"):
		creator = "Logitech"
	case model == "SqueezeLite", strings.Contains(model, "SqueezePlay"):
		if strings.Contains(firmware, "-pCP") {
			creator = "Paul, Steen, Greg"
		} else {
			creator = "Ralph Irving & Adrian Smith"
			squeezelite = ""
		}
	}

	if modelType == "squeezelite" {
		creator += squeezelite
	}
	return creator
}

// Query runs a query against this player.
func (p *Player) Query(ctx context.Context, command ...string) (slimrpc.Result, error) {
	return p.server.rpc.Query(ctx, p.id, command...)
}

// Command sends a one-shot command to this player. The command is not
// verified against the player's state; call Update to observe the effect.
func (p *Player) Command(ctx context.Context, command ...string) error {
	return p.server.rpc.Command(ctx, p.id, command...)
}

// Update fetches the player's current status, alarms, and alarm preference,
// replacing the previous snapshot wholesale. On error the old snapshot is
// kept untouched.
func (p *Player) Update(ctx context.Context) error {
	status, err := p.Query(ctx, "status", "-", "1", "tags:"+statusTags, "alarmData:1")
	if err != nil {
		return fmt.Errorf("updating %s: %w", p.name, err)
	}

	// The first query returns only the current track. When a playlist is
	// loaded, fetch it in full so the snapshot is complete.
	if tracks, ok := status.Int("playlist_tracks"); ok && tracks > 0 {
		full, err := p.Query(ctx, "status", "0", strconv.Itoa(tracks), "tags:"+statusTags, "alarmData:1")
		if err != nil {
			return fmt.Errorf("updating %s playlist: %w", p.name, err)
		}
		status = full
	}

	// There is no way to know how many alarms exist beforehand; 99 is the
	// practical ceiling.
	alarmData, err := p.Query(ctx, "alarms", "0", "99", "filter:all")
	if err != nil {
		return fmt.Errorf("updating %s alarms: %w", p.name, err)
	}
	alarms := parseAlarms(alarmData)

	alarmsEnabled := p.alarmsEnabled
	pref, err := p.Query(ctx, "playerpref", "alarmsEnabled", "?")
	if err != nil {
		log.Printf("squeezebox: unable to read alarmsEnabled pref for %s: %v", p.name, err)
	} else if v, ok := pref.String("_p2"); ok {
		alarmsEnabled = v == "1"
	}

	p.status = status
	p.alarms = alarms
	p.alarmsEnabled = alarmsEnabled
	return nil
}

// Name returns the player's display name.
func (p *Player) Name() string { return p.name }

// ID returns the player ID, which is its MAC address.
func (p *Player) ID() string { return p.id }

// Model returns the model name, e.g. "Squeezebox Boom".
func (p *Player) Model() string { return p.model }

// ModelType returns the model type, e.g. "baby".
func (p *Player) ModelType() string { return p.modelType }

// Firmware returns the firmware version, when known.
func (p *Player) Firmware() string { return p.firmware }

// Creator returns the player's creator, when known.
func (p *Player) Creator() string { return p.creator }

// Connected reports whether the player was connected to the server at the
// last Update. Players that stay disconnected long enough disappear from the
// server's API entirely, so false covers both cases.
func (p *Player) Connected() bool {
	v, _ := p.status.Int("player_connected")
	return v == 1
}

// Power reports whether the player is switched on.
func (p *Player) Power() bool {
	v, _ := p.status.Int("power")
	return v == 1
}

// Mode returns the playback mode: "play", "pause", or "stop". Empty before
// the first Update.
func (p *Player) Mode() string {
	v, _ := p.status.String("mode")
	return v
}

// Volume returns the volume level, 0 to 100. LMS reports a negative volume
// while muted; muting is separated out into Muting, so the absolute value is
// returned here.
func (p *Player) Volume() int {
	v, ok := p.status.Int("mixer volume")
	if !ok {
		return 0
	}
	if v < 0 {
		return -v
	}
	return v
}

// Muting reports whether the player is muted.
func (p *Player) Muting() bool {
	v, _ := p.status.String("mixer volume")
	return strings.HasPrefix(v, "-")
}

// CurrentTitle returns the title reported for the current remote stream.
func (p *Player) CurrentTitle() string {
	v, _ := p.status.String("current_title")
	return v
}

// Position returns the playback position within the current track.
func (p *Player) Position() time.Duration {
	v, ok := p.status.Float("time")
	if !ok {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}

// Duration returns the length of the current track, or zero when unknown.
func (p *Player) Duration() time.Duration {
	track := p.CurrentTrack()
	if track == nil {
		return 0
	}
	return track.Duration
}

// CurrentIndex returns the playlist position, or -1 when no playlist is
// loaded.
func (p *Player) CurrentIndex() int {
	v, ok := p.status.Int("playlist_cur_index")
	if !ok {
		return -1
	}
	return v
}

// CurrentTrack returns the current track: the remote stream's metadata when
// playing a remote source, otherwise the playlist entry at the current index.
func (p *Player) CurrentTrack() *Track {
	if meta, ok := p.status.Map("remoteMeta"); ok {
		track := trackFromResult(meta)
		return &track
	}
	playlist := p.Playlist()
	index := p.CurrentIndex()
	if index >= 0 && index < len(playlist) {
		return &playlist[index]
	}
	return nil
}

// Remote reports whether the current source is a remote stream.
func (p *Player) Remote() bool {
	v, _ := p.status.Int("remote")
	return v == 1
}

// RemoteTitle returns the remote stream title of the current track.
func (p *Player) RemoteTitle() string {
	if track := p.CurrentTrack(); track != nil {
		return track.RemoteTitle
	}
	return ""
}

// Title returns the title of the current track.
func (p *Player) Title() string {
	if track := p.CurrentTrack(); track != nil {
		return track.Title
	}
	return ""
}

// Artist returns the artist of the current track.
func (p *Player) Artist() string {
	if track := p.CurrentTrack(); track != nil {
		return track.Artist
	}
	return ""
}

// Album returns the album of the current track.
func (p *Player) Album() string {
	if track := p.CurrentTrack(); track != nil {
		return track.Album
	}
	return ""
}

// ContentType returns the content type of the current track.
func (p *Player) ContentType() string {
	if track := p.CurrentTrack(); track != nil {
		return track.Type
	}
	return ""
}

// Bitrate returns the bit rate of the current track as reported by the
// server, including units.
func (p *Player) Bitrate() string {
	if track := p.CurrentTrack(); track != nil {
		return track.Bitrate
	}
	return ""
}

// SampleRate returns the sample rate of the current track in Hz, or zero.
func (p *Player) SampleRate() int {
	if track := p.CurrentTrack(); track != nil {
		return track.SampleRate
	}
	return 0
}

// SampleSize returns the sample size of the current track in bits, or zero.
func (p *Player) SampleSize() int {
	if track := p.CurrentTrack(); track != nil {
		return track.SampleSize
	}
	return 0
}

// TrackURL returns the URL of the current track.
func (p *Player) TrackURL() string {
	if track := p.CurrentTrack(); track != nil {
		return track.URL
	}
	return ""
}

// ImageURL returns the artwork URL for the current track. Tracks without art
// resolve to the server's stock unknown-album image, which keeps the URL
// cacheable.
func (p *Player) ImageURL() string {
	if track := p.CurrentTrack(); track != nil {
		if track.ArtworkURL != "" {
			// Some plugins generate a relative artwork URL.
			if !strings.HasPrefix(track.ArtworkURL, "http") {
				return p.server.ImageURL(track.ArtworkURL)
			}
			return track.ArtworkURL
		}
		if track.CoverID != "" {
			return p.server.ImageURLFromTrackID(track.CoverID)
		}
	}
	return p.server.ImageURL("/music/unknown/cover.jpg")
}

// Playlist returns the player's current playlist.
func (p *Player) Playlist() []Track {
	loop, ok := p.status.Maps("playlist_loop")
	if !ok {
		return nil
	}
	tracks := make([]Track, 0, len(loop))
	for _, entry := range loop {
		tracks = append(tracks, trackFromResult(entry))
	}
	return tracks
}

// PlaylistURLs returns only the URLs of the current playlist. Useful for
// comparing playlists.
func (p *Player) PlaylistURLs() []string {
	playlist := p.Playlist()
	if playlist == nil {
		return nil
	}
	urls := make([]string, len(playlist))
	for i, track := range playlist {
		urls[i] = track.URL
	}
	return urls
}

// PlaylistTracks returns the length of the current playlist.
func (p *Player) PlaylistTracks() int {
	v, _ := p.status.Int("playlist_tracks")
	return v
}

// Shuffle returns the shuffle mode: ShuffleOff, ShuffleSong, or ShuffleAlbum.
// Empty before the first Update.
func (p *Player) Shuffle() string {
	v, ok := p.status.Int("playlist shuffle")
	if !ok || v < 0 || v >= len(shuffleModes) {
		return ""
	}
	return shuffleModes[v]
}

// Repeat returns the repeat mode: RepeatOff, RepeatSong, or RepeatPlaylist.
// Empty before the first Update.
func (p *Player) Repeat() string {
	v, ok := p.status.Int("playlist repeat")
	if !ok || v < 0 || v >= len(repeatModes) {
		return ""
	}
	return repeatModes[v]
}

// Synced reports whether the player is in a sync group.
func (p *Player) Synced() bool {
	_, ok := p.status.String("sync_master")
	return ok
}

// SyncMaster returns the player ID of the sync group master.
func (p *Player) SyncMaster() string {
	v, _ := p.status.String("sync_master")
	return v
}

// SyncSlaves returns the player IDs of the sync group slaves.
func (p *Player) SyncSlaves() []string {
	v, ok := p.status.String("sync_slaves")
	if !ok || v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// SyncGroup returns the player IDs of every player in the current sync group.
func (p *Player) SyncGroup() []string {
	group := p.SyncSlaves()
	if master := p.SyncMaster(); master != "" {
		group = append(group, master)
	}
	return group
}

// Alarms returns the alarms configured on this player.
func (p *Player) Alarms() []Alarm {
	return p.alarms
}

// AlarmsEnabled reports the player's alarmsEnabled preference.
func (p *Player) AlarmsEnabled() bool {
	return p.alarmsEnabled
}

// AlarmState returns the current alarm state reported by the server.
func (p *Player) AlarmState() string {
	v, _ := p.status.String("alarm_state")
	return v
}

// NextAlarm returns the time of the next alarm, or the zero time when no
// alarm is scheduled.
func (p *Player) NextAlarm() time.Time {
	v, ok := p.status.Int("alarm_next")
	if !ok || v == 0 {
		return time.Time{}
	}
	return time.Unix(int64(v), 0)
}
