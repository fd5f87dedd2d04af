// ABOUTME: Fake Logitech Media Server for tests
// ABOUTME: Serves /jsonrpc.js with configurable players, fixtures, and stubs
package lmstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Player is one fake player known to the server.
type Player struct {
	ID    string
	Name  string
	Model string

	// Status is served for "status" queries against this player.
	Status map[string]any

	// Alarms is served as alarms_loop for "alarms" queries.
	Alarms []map[string]any

	// Prefs answers "playerpref <name> ?" queries.
	Prefs map[string]string
}

// stub is a canned answer for a command prefix.
type stub struct {
	player string
	prefix []string
	result any
}

// Server is a fake LMS instance backed by httptest. The zero behaviors are:
// "players" lists the configured players, "status" serves the target player's
// Status map, "serverstatus" serves ServerStatus, "alarms" and "playerpref"
// serve the player fixtures, and any other command is acknowledged with an
// empty result. Commands with an unknown player target drop the connection,
// which is what the real server does.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	players      []*Player
	serverStatus map[string]any
	stubs        []stub
	requests     [][]string
}

// New starts a fake server with the given players.
func New(players ...*Player) *Server {
	s := &Server{
		players:      players,
		serverStatus: map[string]any{"uuid": "fake-lms", "version": "8.2.0"},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SetServerStatus replaces the serverstatus fixture.
func (s *Server) SetServerStatus(status map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverStatus = status
}

// Stub registers a canned result for commands starting with prefix, optionally
// bound to a player target. Later stubs win over earlier ones.
func (s *Server) Stub(player string, prefix []string, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = append(s.stubs, stub{player: player, prefix: prefix, result: result})
}

// Requests returns every command vector received so far.
func (s *Server) Requests() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// Player looks up a configured player by ID.
func (s *Server) Player(id string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var frame struct {
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil || len(frame.Params) != 2 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var player string
	var cmd []string
	if err := json.Unmarshal(frame.Params[0], &player); err != nil {
		http.Error(w, "bad player", http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal(frame.Params[1], &cmd); err != nil || len(cmd) == 0 {
		http.Error(w, "bad command", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, cmd)
	result, drop := s.dispatch(player, cmd)
	s.mu.Unlock()

	if drop {
		// Unknown player: hang up without answering, like LMS does.
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
			}
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"id": "1", "result": result})
}

// dispatch picks the answer for one decoded frame. Caller holds s.mu.
func (s *Server) dispatch(player string, cmd []string) (result any, drop bool) {
	for i := len(s.stubs) - 1; i >= 0; i-- {
		st := s.stubs[i]
		if st.player != player {
			continue
		}
		if len(cmd) < len(st.prefix) {
			continue
		}
		if !equal(cmd[:len(st.prefix)], st.prefix) {
			continue
		}
		return st.result, false
	}

	var target *Player
	if player != "" {
		for _, p := range s.players {
			if p.ID == player || p.Name == player {
				target = p
				break
			}
		}
		if target == nil {
			return nil, true
		}
	}

	switch cmd[0] {
	case "players":
		loop := make([]map[string]any, 0, len(s.players))
		for _, p := range s.players {
			entry := map[string]any{"playerid": p.ID, "name": p.Name}
			if p.Model != "" {
				entry["modelname"] = p.Model
			}
			loop = append(loop, entry)
		}
		return map[string]any{"count": len(loop), "players_loop": loop}, false

	case "serverstatus":
		return s.serverStatus, false

	case "status":
		if target == nil {
			return map[string]any{}, false
		}
		status := map[string]any{"player_name": target.Name, "player_connected": 1}
		for k, v := range target.Status {
			status[k] = v
		}
		return status, false

	case "alarms":
		if target == nil || target.Alarms == nil {
			return map[string]any{"count": 0}, false
		}
		return map[string]any{"count": len(target.Alarms), "alarms_loop": target.Alarms}, false

	case "playerpref":
		if len(cmd) == 3 && cmd[2] == "?" && target != nil {
			if v, ok := target.Prefs[cmd[1]]; ok {
				return map[string]any{"_p2": v}, false
			}
			return map[string]any{}, false
		}
		if len(cmd) == 3 && target != nil {
			if target.Prefs == nil {
				target.Prefs = map[string]string{}
			}
			target.Prefs[cmd[1]] = cmd[2]
		}
		return map[string]any{}, false

	default:
		// Acknowledge anything else as a plain command.
		return map[string]any{}, false
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		// Tagged parameters like "tags:..." match on the tag name only, so
		// stubs do not have to repeat the full tag list.
		if strings.Contains(b[i], ":") || strings.Contains(a[i], ":") {
			if tagName(a[i]) == tagName(b[i]) {
				continue
			}
			return false
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func tagName(s string) string {
	if i := strings.Index(s, ":"); i >= 0 {
		return s[:i]
	}
	return s
}
