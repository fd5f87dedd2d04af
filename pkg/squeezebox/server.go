// ABOUTME: Server facade for one LMS instance
// ABOUTME: Enumerates players, runs server-wide queries, builds image URLs
package squeezebox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/rajlaud/squeezebox-go/pkg/slimrpc"
)

// Config holds the connection parameters for one LMS instance. Only Host is
// required; Name and UUID are usually learned from the server itself.
type Config struct {
	Host     string
	Port     int // defaults to slimrpc.DefaultPort
	Username string
	Password string
	HTTPS    bool

	// Name is the server's friendly name, if the host application knows it.
	Name string

	// UUID is filled in on the first successful Status call when unset.
	UUID string
}

// Server represents a Logitech Media Server instance. It holds no connection
// state of its own; every operation is a single request on the shared HTTP
// session passed to NewServer.
type Server struct {
	rpc    *slimrpc.Client
	config Config

	// Name is the server's friendly name, when known.
	Name string

	// UUID identifies the server across address changes.
	UUID string

	status slimrpc.Result
	cache  map[string]*categoryCache
}

// NewServer creates a Server that communicates through httpClient, or
// http.DefaultClient when nil. The session is owned by the caller; the
// library never closes it.
func NewServer(httpClient *http.Client, config Config) *Server {
	return &Server{
		rpc: slimrpc.NewClient(httpClient, slimrpc.Config{
			Host:     config.Host,
			Port:     config.Port,
			Username: config.Username,
			Password: config.Password,
			HTTPS:    config.HTTPS,
		}),
		config: config,
		Name:   config.Name,
		UUID:   config.UUID,
		cache:  make(map[string]*categoryCache),
	}
}

// Query runs a server-wide query and returns the result object.
func (s *Server) Query(ctx context.Context, command ...string) (slimrpc.Result, error) {
	return s.rpc.Query(ctx, "", command...)
}

// Command sends a server-wide command.
func (s *Server) Command(ctx context.Context, command ...string) error {
	return s.rpc.Command(ctx, "", command...)
}

// Status queries serverstatus and caches the result. Extra tagged parameters
// are passed through to the server. The server's UUID is recorded on the
// first successful call.
func (s *Server) Status(ctx context.Context, args ...string) (slimrpc.Result, error) {
	query := append([]string{"serverstatus", "-", "-"}, args...)
	status, err := s.Query(ctx, query...)
	if err != nil {
		return nil, err
	}
	s.status = status
	if s.UUID == "" {
		if uuid, ok := status.String("uuid"); ok {
			s.UUID = uuid
		}
	}
	return status, nil
}

// Players returns a Player for each device connected to the server. search
// filters the result by case-insensitive name substring; leave it empty for
// all players. A malformed player list is an error; a server with no players
// returns an empty slice.
func (s *Server) Players(ctx context.Context, search string) ([]*Player, error) {
	data, err := s.Query(ctx, "players", "status")
	if err != nil {
		return nil, err
	}

	loop, ok := data.Maps("players_loop")
	if !ok {
		return nil, fmt.Errorf("%w: missing players_loop", slimrpc.ErrInvalidResponse)
	}

	players := make([]*Player, 0, len(loop))
	for _, entry := range loop {
		id, idOK := entry.String("playerid")
		name, nameOK := entry.String("name")
		if !idOK || !nameOK {
			log.Printf("squeezebox: skipping invalid player descriptor: %v", entry)
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(search)) {
			continue
		}
		model, _ := entry.String("modelname")
		modelType, _ := entry.String("model")
		firmware, _ := entry.String("firmware")
		players = append(players, newPlayer(s, id, name, model, modelType, firmware))
	}
	return players, nil
}

// PlayerByID returns the Player with the given player ID (its MAC address),
// or (nil, nil) when the server does not know it.
func (s *Server) PlayerByID(ctx context.Context, id string) (*Player, error) {
	data, err := s.rpc.Query(ctx, id, "status")
	if err != nil {
		if errors.Is(err, slimrpc.ErrPlayerNotFound) {
			return nil, nil
		}
		return nil, err
	}

	name, ok := data.String("player_name")
	if !ok {
		return nil, nil
	}

	// An exact, case sensitive match on a player *name* also answers an ID
	// query. Re-resolve by name to recover the real player ID.
	if name == id {
		log.Printf("squeezebox: PlayerByID(%s) called with a player name", id)
		return s.PlayerByName(ctx, id)
	}

	return newPlayer(s, id, name, "", "", ""), nil
}

// PlayerByName returns the first player whose name contains name,
// case-insensitively, or (nil, nil) when none matches. When several players
// match, the first one listed by the server wins.
func (s *Server) PlayerByName(ctx context.Context, name string) (*Player, error) {
	players, err := s.Players(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, nil
	}
	if len(players) > 1 {
		log.Printf("squeezebox: found more than one player matching %s", name)
	}
	return players[0], nil
}

// ImageURL resolves an image path relative to the server's web root,
// embedding basic auth credentials when configured.
func (s *Server) ImageURL(imagePath string) string {
	scheme := "http"
	if s.config.HTTPS {
		scheme = "https"
	}
	port := s.config.Port
	if port == 0 {
		port = slimrpc.DefaultPort
	}

	base := &url.URL{Scheme: scheme, Host: fmt.Sprintf("%s:%d", s.config.Host, port), Path: "/"}
	if s.config.Username != "" && s.config.Password != "" {
		base.User = url.UserPassword(s.config.Username, s.config.Password)
	}

	ref, err := url.Parse(imagePath)
	if err != nil {
		return base.String()
	}
	return base.ResolveReference(ref).String()
}

// ImageURLFromTrackID returns the cover art URL for a track ID.
func (s *Server) ImageURLFromTrackID(trackID string) string {
	return s.ImageURL(fmt.Sprintf("/music/%s/cover.jpg", trackID))
}

var trackIDPattern = regexp.MustCompile(`^/?music/([^/]+)/cover`)

// TrackIDFromImageURL extracts the track ID from a cover art URL, or returns
// an empty string when the URL is not a cover art path.
func TrackIDFromImageURL(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	match := trackIDPattern.FindStringSubmatch(u.Path)
	if match == nil {
		return ""
	}
	return match[1]
}
