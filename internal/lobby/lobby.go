// Package lobby tracks the live games of the process. Each game gets
// an id and runs on its own loop; the lobby only maps ids to games and
// tears entries down when a game delivers its result.
package lobby

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/game"
)

// ResultHandler consumes a finished game's result, e.g. to persist it.
type ResultHandler func(gameID string, result event.Result, aborted bool)

// Manager owns the set of running games.
type Manager struct {
	cfg      *game.Config
	onResult ResultHandler

	mu    sync.Mutex
	games map[string]*game.Game
}

// NewManager creates a lobby using cfg for every game it starts. The
// result handler may be nil.
func NewManager(cfg *game.Config, onResult ResultHandler) *Manager {
	return &Manager{
		cfg:      cfg,
		onResult: onResult,
		games:    make(map[string]*game.Game),
	}
}

// Create builds and starts a game for the given players and returns
// its id. The sink receives the game's event stream. The entry removes
// itself once the game reports its result.
func (m *Manager) Create(profiles []event.Profile, sink event.Sink) (string, *game.Game, error) {
	id := uuid.NewString()

	onEnd := func(result event.Result, aborted bool) {
		m.remove(id)
		if m.onResult != nil {
			m.onResult(id, result, aborted)
		}
	}

	g, err := game.New(profiles, m.cfg, sink, onEnd)
	if err != nil {
		return "", nil, fmt.Errorf("create game: %w", err)
	}

	m.mu.Lock()
	m.games[id] = g
	m.mu.Unlock()

	g.Start()
	slog.Info("game created", "game", id, "players", len(profiles))
	return id, g, nil
}

// Get returns the game with the given id, or nil.
func (m *Manager) Get(id string) *game.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.games[id]
}

// Len returns the number of live games.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games)
}

// Shutdown aborts every live game. Results are still delivered through
// the usual callback.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	games := make([]*game.Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	m.mu.Unlock()

	for _, g := range games {
		if err := g.Abort(); err != nil {
			slog.Warn("abort on shutdown", "error", err)
		}
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	g := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()

	if g != nil {
		g.Stop()
		slog.Info("game removed", "game", id)
	}
}
