// ABOUTME: Music library browsing for a Server
// ABOUTME: Category queries, favorites normalization, and the lastscan cache
package squeezebox

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/rajlaud/squeezebox-go/pkg/slimrpc"
)

// BrowseID narrows a browse query to one library entity, e.g.
// {Kind: "album_id", Value: "7"}. Valid kinds are album_id, artist_id,
// genre_id, track_id, playlist_id, and item_id (favorites).
type BrowseID struct {
	Kind  string
	Value string
}

func (b BrowseID) param() string {
	return b.Kind + ":" + b.Value
}

// BrowseItem is one entry of a browse result.
type BrowseItem struct {
	ID    string
	Title string

	// Artist is set for albums.
	Artist string

	// URL is set for favorites.
	URL string

	// ImageURL is set when artwork is available.
	ImageURL string

	// ArtworkTrackID is the track ID behind ImageURL, when derivable.
	ArtworkTrackID string

	// AlbumID is resolved for favorites that point at a library album.
	AlbumID string

	// HasItems marks container favorites that can be browsed into.
	HasItems bool
}

// BrowseResult is the answer to a Browse call.
type BrowseResult struct {
	// Title names what was browsed, e.g. "Artists", "Jimi Hendrix", "Jazz".
	Title string
	Items []BrowseItem
}

// categoryCache keeps one category's items keyed to the library scan that
// produced them.
type categoryCache struct {
	lastScan int
	limit    int // 0 means the full category
	items    []BrowseItem
}

// cacheableCategories are refreshed only when the server reports a new
// library scan.
var cacheableCategories = map[string]bool{
	"artists": true,
	"albums":  true,
	"titles":  true,
	"genres":  true,
}

// singularCategories browse into one entity and take their title from it.
var singularCategories = map[string]bool{
	"playlist": true,
	"album":    true,
	"artist":   true,
	"genre":    true,
	"title":    true,
	"favorite": true,
}

// Browse walks the music library. category is one of playlists, playlist,
// albums, album, artists, artist, titles, genres, genre, favorites, or
// favorite; the singular forms browse into the entity named by browseID.
// limit caps the number of items; zero means everything.
func (s *Server) Browse(ctx context.Context, category string, limit int, browseID *BrowseID) (*BrowseResult, error) {
	var search string
	if browseID != nil {
		search = browseID.param()
	}

	browse := &BrowseResult{Title: titleCase(category)}
	if singularCategories[category] && search != "" {
		title, err := s.CategoryTitle(ctx, category, search)
		if err != nil {
			return nil, err
		}
		if title != "" {
			browse.Title = title
		}
	}

	var itemType string
	switch category {
	case "playlist", "album", "title":
		itemType = "titles"
	case "genre":
		itemType = "artists"
	case "artist":
		itemType = "albums"
	default:
		itemType = category
	}

	items, err := s.category(ctx, itemType, limit, search)
	if err != nil {
		return nil, err
	}
	browse.Items = items
	if category == "title" && len(items) > 0 {
		browse.Title = items[0].Title
	}
	return browse, nil
}

// Count returns the number of entries in a library category.
func (s *Server) Count(ctx context.Context, category string) (int, error) {
	query := []string{category}
	if category == "favorites" {
		query = append(query, "items")
	}
	query = append(query, "0", "1")

	result, err := s.Query(ctx, query...)
	if err != nil {
		return 0, err
	}
	count, _ := result.Int("count")
	return count, nil
}

// CategoryTitle resolves the display title of the entity a browse ID points
// at, e.g. the album name for an album_id.
func (s *Server) CategoryTitle(ctx context.Context, category, search string) (string, error) {
	items, err := s.queryCategory(ctx, category+"s", 50, search)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", nil
	}
	return items[0].Title, nil
}

// category returns the entries of a library category, serving cacheable
// unfiltered categories from the lastscan cache when the library has not been
// rescanned since they were fetched.
func (s *Server) category(ctx context.Context, category string, limit int, search string) ([]BrowseItem, error) {
	if !cacheableCategories[category] || search != "" {
		return s.queryCategory(ctx, category, limit, search)
	}

	status, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	lastScan, hasScan := status.Int("lastscan")

	if cached, ok := s.cache[category]; ok && hasScan && lastScan <= cached.lastScan {
		if cached.limit == 0 {
			if limit == 0 {
				return cached.items, nil
			}
			if limit <= len(cached.items) {
				return cached.items[:limit], nil
			}
			return cached.items, nil
		}
		if limit > 0 && limit <= cached.limit {
			if limit < len(cached.items) {
				return cached.items[:limit], nil
			}
			return cached.items, nil
		}
	}

	log.Printf("squeezebox: refreshing category cache for %s", category)
	items, err := s.queryCategory(ctx, category, limit, "")
	if err != nil {
		return nil, err
	}

	// Only keep results the next scan can invalidate.
	status, err = s.Status(ctx)
	if err == nil {
		if lastScan, ok := status.Int("lastscan"); ok {
			s.cache[category] = &categoryCache{lastScan: lastScan, limit: limit, items: items}
		} else {
			delete(s.cache, category)
		}
	}

	if limit > 0 && limit < len(items) {
		return items[:limit], nil
	}
	return items, nil
}

// queryCategory fetches the entries of a library category from the server,
// optionally filtered by a tag:value search parameter.
func (s *Server) queryCategory(ctx context.Context, category string, limit int, search string) ([]BrowseItem, error) {
	if limit == 0 {
		count, err := s.Count(ctx, category)
		if err != nil {
			return nil, err
		}
		limit = count
	}

	var query []string
	loopKey := category + "_loop"
	switch {
	case category == "titles" && strings.Contains(search, "playlist_id"):
		// playlist_id does not work for a titles search; go through the
		// playlists tracks command instead.
		query = []string{"playlists", "tracks", "0", strconv.Itoa(limit), search, "tags:ju"}
		loopKey = "playlisttracks_loop"
	case strings.Contains(search, "item_id"):
		// Favorite items have to be looked up separately.
		query = []string{"favorites", "items", "0", strconv.Itoa(limit), search}
		loopKey = "loop_loop"
	default:
		if category == "favorite" || category == "favorites" {
			query = []string{"favorites", "items"}
			loopKey = "loop_loop" // strange, but what LMS returns
		} else {
			query = []string{category}
		}
		query = append(query, "0", strconv.Itoa(limit))
		if search != "" {
			query = append(query, search)
		}
	}

	// Command suffixes apply regardless of how the query was built, so an
	// item_id favorites lookup also asks for URLs.
	switch query[0] {
	case "albums":
		query = append(query, "tags:jla")
	case "titles":
		query = append(query, "sort:albumtrack", "tags:ju")
	case "favorites":
		query = append(query, "want_url:1")
	}

	result, err := s.Query(ctx, query...)
	if err != nil {
		return nil, err
	}
	if count, ok := result.Int("count"); !ok || count == 0 {
		return nil, nil
	}

	loop, ok := result.Maps(loopKey)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s for category %s", slimrpc.ErrInvalidResponse, loopKey, category)
	}

	favorites := query[0] == "favorites"
	items := make([]BrowseItem, 0, len(loop))
	for _, entry := range loop {
		item, keep, err := s.browseItem(ctx, entry, category, favorites)
		if err != nil {
			return nil, err
		}
		if keep {
			items = append(items, item)
		}
	}
	return items, nil
}

// browseItem normalizes one loop entry. Favorites need the most massaging:
// LMS names them differently, hides artwork behind an opaque image field, and
// uses db: URLs for album links.
func (s *Server) browseItem(ctx context.Context, entry slimrpc.Result, category string, favorite bool) (BrowseItem, bool, error) {
	var item BrowseItem
	item.ID, _ = entry.String("id")

	if favorite {
		isAudio, _ := entry.Int("isaudio")
		hasItems, _ := entry.Int("hasitems")
		if isAudio != 1 && hasItems != 1 {
			return item, false, nil
		}
		item.HasItems = hasItems == 1
		item.Title, _ = entry.String("name")
		item.URL, _ = entry.String("url")

		if strings.HasPrefix(item.URL, "db:album.title") {
			albumID, err := s.albumIDFromFavoritesURL(ctx, item.URL)
			if err != nil {
				return item, false, err
			}
			item.AlbumID = albumID
		}
		if image, ok := entry.String("image"); ok {
			item.ImageURL = s.ImageURL(image)
			item.ArtworkTrackID = TrackIDFromImageURL(item.ImageURL)
		}
	} else {
		// Non-favorite loops name the title after the singular category:
		// albums_loop entries carry an "album" field, and so on.
		item.Title, _ = entry.String(strings.TrimSuffix(category, "s"))
		item.Artist, _ = entry.String("artist")
	}

	if trackID, ok := entry.String("artwork_track_id"); ok {
		item.ArtworkTrackID = trackID
		item.ImageURL = s.ImageURLFromTrackID(trackID)
	}
	return item, true, nil
}

// albumIDFromFavoritesURL resolves a favorites db:album.title URL to the
// matching album's ID, or an empty string when no album matches.
func (s *Server) albumIDFromFavoritesURL(ctx context.Context, favURL string) (string, error) {
	unquoted, err := url.QueryUnescape(favURL)
	if err != nil {
		return "", nil
	}

	// The URL looks like db:album.title=NAME&contributor.name=ARTIST.
	search := strings.TrimPrefix(unquoted, "db:album.title=")
	parts := strings.SplitN(search, "&contributor.name=", 2)
	title := parts[0]
	var contributor string
	if len(parts) > 1 {
		contributor = parts[1]
	}

	albums, err := s.category(ctx, "albums", 0, "")
	if err != nil {
		return "", err
	}
	for _, album := range albums {
		if album.Title != title {
			continue
		}
		if contributor == "" || album.Artist == contributor {
			return album.ID, nil
		}
	}
	return "", nil
}

// titleCase upper-cases the first rune, mirroring how LMS labels categories.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
