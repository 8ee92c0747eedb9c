// Package server exposes the engine over HTTP and websocket: a small
// REST surface to create and inspect games, and a per-game websocket
// stream carrying state deltas out and player actions in.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/game"
	"github.com/maroulf/gridlords/internal/lobby"
	"github.com/maroulf/gridlords/internal/store"
)

var upgrader = websocket.Upgrader{
	// For dev, allow all origins. Lock this down in prod.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server routes HTTP and websocket traffic to the lobby's games.
type Server struct {
	Lobby *lobby.Manager
	DB    *store.DB // nil disables the result read endpoints

	mu    sync.Mutex
	rooms map[string]*room
}

// New creates a server over the given lobby and result store.
func New(l *lobby.Manager, db *store.DB) *Server {
	return &Server{
		Lobby: l,
		DB:    db,
		rooms: make(map[string]*room),
	}
}

// Handler returns the server's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games", s.handleRecentGames)
	mux.HandleFunc("GET /api/games/{id}", s.handleGameResult)
	mux.HandleFunc("GET /api/games/{id}/stats/{player}", s.handlePlayerStats)
	mux.HandleFunc("GET /ws/{id}", s.handleWS)
	return mux
}

// handleCreateGame starts a new game for the posted player profiles
// and returns its id.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rm := newRoom()
	id, _, err := s.Lobby.Create(req.Players, rm.broadcast)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.rooms[id] = rm
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, createGameResponse{GameID: id})
}

// handleRecentGames lists recently finished games.
func (s *Server) handleRecentGames(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no result store configured", http.StatusNotFound)
		return
	}
	recs, err := s.DB.RecentGames(20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleGameResult returns one finished game.
func (s *Server) handleGameResult(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no result store configured", http.StatusNotFound)
		return
	}
	rec, err := s.DB.Game(r.PathValue("id"))
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handlePlayerStats returns one player's recorded series in a
// finished game.
func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no result store configured", http.StatusNotFound)
		return
	}
	stats, err := s.DB.PlayerStats(r.PathValue("id"), r.PathValue("player"))
	if err != nil {
		http.Error(w, "stats not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleWS attaches a websocket to a running game. The player query
// parameter names the acting player; without it the connection is a
// spectator and inbound actions are rejected.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	g := s.Lobby.Get(gameID)
	s.mu.Lock()
	rm := s.rooms[gameID]
	s.mu.Unlock()
	if g == nil || rm == nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade", "error", err)
		return
	}

	c := newClient(conn, r.URL.Query().Get("player"))
	rm.add(c)
	go c.writePump()

	// joining clients get the full state first
	if snapshot, err := g.Snapshot(); err == nil {
		c.push(event.Event{Name: event.GameState, Payload: snapshot})
	}

	slog.Info("client joined", "game", gameID, "player", c.player)
	s.readActions(g, rm, c)
	rm.remove(c)
	slog.Info("client left", "game", gameID, "player", c.player)
}

// readActions consumes the client's inbound commands until the
// connection drops.
func (s *Server) readActions(g *game.Game, rm *room, c *client) {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg actionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.push(event.Event{Name: "action_error", Payload: actionError{
				Error: "malformed action message",
			}})
			continue
		}
		s.dispatch(g, rm, c, msg)
	}
}

// dispatch routes one client command into the game. Successful actions
// broadcast their delta to the whole room; rejections go back to the
// sender only.
func (s *Server) dispatch(g *game.Game, rm *room, c *client, msg actionMessage) {
	if c.player == "" {
		c.push(event.Event{Name: "action_error", Payload: actionError{
			Action: msg.Action, Error: "spectators cannot act",
		}})
		return
	}

	var (
		out event.Event
		err error
	)
	switch msg.Action {
	case actionBuildFactory:
		if msg.Coord == nil {
			err = errors.New("build_factory needs a coord")
			break
		}
		var built event.FactoryBuilt
		built, err = g.BuildFactory(c.player, *msg.Coord)
		out = event.Event{Name: event.BuildFactory, Payload: built}

	case actionBuildTurret:
		if msg.Coord == nil {
			err = errors.New("build_turret needs a coord")
			break
		}
		var built event.TurretBuilt
		built, err = g.BuildTurret(c.player, *msg.Coord)
		out = event.Event{Name: event.BuildTurret, Payload: built}

	case actionMoveProbes:
		if msg.Target == nil {
			err = errors.New("move_probes needs a target")
			break
		}
		var delta event.GameStateDelta
		delta, err = g.MoveProbes(c.player, msg.Probes, *msg.Target)
		out = event.Event{Name: event.GameState, Payload: delta}

	case actionExplodeProbes:
		var delta event.GameStateDelta
		delta, err = g.ExplodeProbes(c.player, msg.Probes)
		out = event.Event{Name: event.GameState, Payload: delta}

	case actionProbesAttack:
		var delta event.GameStateDelta
		delta, err = g.ProbesAttack(c.player, msg.Probes)
		out = event.Event{Name: event.GameState, Payload: delta}

	case actionResign:
		// death and game-over deltas flow through the game's own sink
		err = g.Resign(c.player)
		if err == nil {
			return
		}

	default:
		err = fmt.Errorf("unknown action %q", msg.Action)
	}

	if err != nil {
		c.push(event.Event{Name: "action_error", Payload: actionError{
			Action: msg.Action, Error: err.Error(),
		}})
		return
	}
	rm.broadcast(out)
}

// CloseRoom disconnects a finished game's clients and drops the room.
func (s *Server) CloseRoom(gameID string) {
	s.mu.Lock()
	rm := s.rooms[gameID]
	delete(s.rooms, gameID)
	s.mu.Unlock()

	if rm != nil {
		rm.closeAll()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
