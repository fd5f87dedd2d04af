// ABOUTME: Tests for library browsing, favorites normalization, and the cache
// ABOUTME: Stubs category responses on the fake server
package squeezebox

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rajlaud/squeezebox-go/internal/lmstest"
)

func albumsResult() map[string]any {
	return map[string]any{
		"count": 2,
		"albums_loop": []any{
			map[string]any{"id": 5, "album": "Time Out", "artist": "Dave Brubeck", "artwork_track_id": "17"},
			map[string]any{"id": 8, "album": "Kind of Blue", "artist": "Miles Davis"},
		},
	}
}

func stubAlbums(fake *lmstest.Server) {
	fake.Stub("", []string{"albums"}, albumsResult())
}

// countRequests counts the recorded commands starting with name.
func countRequests(fake *lmstest.Server, name string) int {
	var n int
	for _, cmd := range fake.Requests() {
		if cmd[0] == name {
			n++
		}
	}
	return n
}

func TestBrowseAlbums(t *testing.T) {
	server, fake := newTestServer(t)
	stubAlbums(fake)

	browse, err := server.Browse(context.Background(), "albums", 2, nil)
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if browse.Title != "Albums" {
		t.Errorf("expected title Albums, got %q", browse.Title)
	}

	want := []BrowseItem{
		{
			ID:             "5",
			Title:          "Time Out",
			Artist:         "Dave Brubeck",
			ArtworkTrackID: "17",
			ImageURL:       server.ImageURLFromTrackID("17"),
		},
		{ID: "8", Title: "Kind of Blue", Artist: "Miles Davis"},
	}
	if diff := cmp.Diff(want, browse.Items); diff != "" {
		t.Errorf("albums mismatch (-want +got):\n%s", diff)
	}
}

func TestBrowseEmptyCategory(t *testing.T) {
	server, fake := newTestServer(t)
	fake.Stub("", []string{"genres"}, map[string]any{"count": 0})

	browse, err := server.Browse(context.Background(), "genres", 0, nil)
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if len(browse.Items) != 0 {
		t.Errorf("expected no items, got %d", len(browse.Items))
	}
}

func TestCategoryCache(t *testing.T) {
	server, fake := newTestServer(t)
	stubAlbums(fake)
	fake.SetServerStatus(map[string]any{"uuid": "fake-lms", "lastscan": 100})

	ctx := context.Background()
	if _, err := server.Browse(ctx, "albums", 0, nil); err != nil {
		t.Fatalf("first Browse failed: %v", err)
	}
	if got := countRequests(fake, "albums"); got != 2 {
		// One count query plus the fetch itself.
		t.Fatalf("expected 2 albums requests after first browse, got %d", got)
	}

	// Same scan: served from the cache.
	if _, err := server.Browse(ctx, "albums", 0, nil); err != nil {
		t.Fatalf("second Browse failed: %v", err)
	}
	if got := countRequests(fake, "albums"); got != 2 {
		t.Errorf("expected cached browse to send no albums requests, got %d total", got)
	}

	// A narrower limit is also served from the full cached category.
	browse, err := server.Browse(ctx, "albums", 1, nil)
	if err != nil {
		t.Fatalf("limited Browse failed: %v", err)
	}
	if len(browse.Items) != 1 || browse.Items[0].Title != "Time Out" {
		t.Errorf("unexpected limited result: %+v", browse.Items)
	}
	if got := countRequests(fake, "albums"); got != 2 {
		t.Errorf("expected limited browse to hit the cache, got %d total requests", got)
	}

	// A new library scan invalidates the cache.
	fake.SetServerStatus(map[string]any{"uuid": "fake-lms", "lastscan": 200})
	if _, err := server.Browse(ctx, "albums", 0, nil); err != nil {
		t.Fatalf("post-rescan Browse failed: %v", err)
	}
	if got := countRequests(fake, "albums"); got != 4 {
		t.Errorf("expected rescan to refetch albums, got %d total requests", got)
	}
}

func TestBrowseAlbumTracks(t *testing.T) {
	server, fake := newTestServer(t)
	stubAlbums(fake)
	fake.Stub("", []string{"titles"}, map[string]any{
		"count": 2,
		"titles_loop": []any{
			map[string]any{"id": 31, "title": "Blue in Green"},
			map[string]any{"id": 32, "title": "So What"},
		},
	})

	browse, err := server.Browse(context.Background(), "album", 10, &BrowseID{Kind: "album_id", Value: "5"})
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	// Browsing into an album titles the result after the album itself.
	if browse.Title != "Time Out" {
		t.Errorf("expected title Time Out, got %q", browse.Title)
	}
	if len(browse.Items) != 2 || browse.Items[1].Title != "So What" {
		t.Errorf("unexpected tracks: %+v", browse.Items)
	}
}

func TestBrowsePlaylistTracks(t *testing.T) {
	server, fake := newTestServer(t)
	fake.Stub("", []string{"playlists"}, map[string]any{
		"count": 1,
		"playlists_loop": []any{
			map[string]any{"id": 3, "playlist": "Morning Mix"},
		},
	})
	fake.Stub("", []string{"playlists", "tracks"}, map[string]any{
		"count": 1,
		"playlisttracks_loop": []any{
			map[string]any{"id": 40, "title": "First Light"},
		},
	})

	browse, err := server.Browse(context.Background(), "playlist", 10, &BrowseID{Kind: "playlist_id", Value: "3"})
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if browse.Title != "Morning Mix" {
		t.Errorf("expected title Morning Mix, got %q", browse.Title)
	}
	if len(browse.Items) != 1 || browse.Items[0].Title != "First Light" {
		t.Errorf("unexpected tracks: %+v", browse.Items)
	}

	// The playlist_id search goes through "playlists tracks" rather than a
	// titles query, which ignores the filter.
	want := []string{"playlists", "tracks", "0", "10", "playlist_id:3", "tags:ju"}
	if diff := cmp.Diff(want, lastRequest(t, fake)); diff != "" {
		t.Errorf("playlist tracks command mismatch (-want +got):\n%s", diff)
	}
}

func TestBrowseFavorites(t *testing.T) {
	server, fake := newTestServer(t)
	stubAlbums(fake)
	fake.Stub("", []string{"favorites", "items"}, map[string]any{
		"count": 4,
		"loop_loop": []any{
			map[string]any{
				"id":      "0.0",
				"name":    "WBGO Jazz",
				"isaudio": 1,
				"url":     "http://wbgo.streamguys.net/wbgo128",
				"image":   "/imageproxy/abc/image.jpg",
			},
			map[string]any{
				"id":       "0.1",
				"name":     "Stations",
				"isaudio":  0,
				"hasitems": 1,
			},
			map[string]any{
				"id":      "0.2",
				"name":    "Time Out",
				"isaudio": 1,
				"url":     "db:album.title=Time%20Out&contributor.name=Dave%20Brubeck",
				"image":   "/music/17/cover.jpg",
			},
			map[string]any{
				// Neither audio nor a container; dropped.
				"id":   "0.3",
				"name": "Broken",
			},
		},
	})

	browse, err := server.Browse(context.Background(), "favorites", 0, nil)
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}

	want := []BrowseItem{
		{
			ID:       "0.0",
			Title:    "WBGO Jazz",
			URL:      "http://wbgo.streamguys.net/wbgo128",
			ImageURL: server.ImageURL("/imageproxy/abc/image.jpg"),
		},
		{ID: "0.1", Title: "Stations", HasItems: true},
		{
			ID:             "0.2",
			Title:          "Time Out",
			URL:            "db:album.title=Time%20Out&contributor.name=Dave%20Brubeck",
			AlbumID:        "5",
			ImageURL:       server.ImageURL("/music/17/cover.jpg"),
			ArtworkTrackID: "17",
		},
	}
	if diff := cmp.Diff(want, browse.Items); diff != "" {
		t.Errorf("favorites mismatch (-want +got):\n%s", diff)
	}
}

func TestBrowseFavoriteItem(t *testing.T) {
	server, fake := newTestServer(t)
	stubAlbums(fake)
	fake.Stub("", []string{"favorites", "items"}, map[string]any{
		"count": 2,
		"loop_loop": []any{
			map[string]any{
				"id":      "0.1.0",
				"name":    "Time Out",
				"isaudio": 1,
				"url":     "db:album.title=Time%20Out&contributor.name=Dave%20Brubeck",
			},
			map[string]any{
				"id":      "0.1.1",
				"name":    "WBGO Jazz",
				"isaudio": 1,
				"url":     "http://wbgo.streamguys.net/wbgo128",
			},
		},
	})

	browse, err := server.Browse(context.Background(), "favorite", 10, &BrowseID{Kind: "item_id", Value: "0.1"})
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if browse.Title != "Time Out" {
		t.Errorf("expected title Time Out, got %q", browse.Title)
	}
	if len(browse.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(browse.Items))
	}

	// Favorite item lookups must ask for URLs, otherwise nested favorites
	// come back without them and album links cannot be resolved.
	if browse.Items[0].AlbumID != "5" {
		t.Errorf("expected album favorite to resolve to album 5, got %q", browse.Items[0].AlbumID)
	}
	if browse.Items[1].URL != "http://wbgo.streamguys.net/wbgo128" {
		t.Errorf("expected stream URL to be kept, got %q", browse.Items[1].URL)
	}

	var favQueries [][]string
	for _, cmd := range fake.Requests() {
		if cmd[0] == "favorites" {
			favQueries = append(favQueries, cmd)
		}
	}
	want := [][]string{
		{"favorites", "items", "0", "50", "item_id:0.1", "want_url:1"},
		{"favorites", "items", "0", "10", "item_id:0.1", "want_url:1"},
	}
	if diff := cmp.Diff(want, favQueries); diff != "" {
		t.Errorf("favorites queries mismatch (-want +got):\n%s", diff)
	}
}

func TestCount(t *testing.T) {
	server, fake := newTestServer(t)
	fake.Stub("", []string{"artists"}, map[string]any{"count": 123})

	count, err := server.Count(context.Background(), "artists")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 123 {
		t.Errorf("expected 123 artists, got %d", count)
	}

	fake.Stub("", []string{"favorites", "items"}, map[string]any{"count": 7})
	count, err = server.Count(context.Background(), "favorites")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 7 {
		t.Errorf("expected 7 favorites, got %d", count)
	}

	want := []string{"favorites", "items", "0", "1"}
	if diff := cmp.Diff(want, lastRequest(t, fake)); diff != "" {
		t.Errorf("favorites count command mismatch (-want +got):\n%s", diff)
	}
}
