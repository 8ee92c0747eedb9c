package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/geom"
	"github.com/maroulf/gridlords/internal/sched"
	"github.com/maroulf/gridlords/internal/stats"
)

// incomeInterval is the period of the per-player economy tick.
const incomeInterval = time.Second

// ResultFunc receives the final game result exactly once. The aborted
// flag marks games ended from outside rather than by elimination.
type ResultFunc func(result event.Result, aborted bool)

// Game orchestrates one match: it owns the map and the players, runs
// every behavior on its own loop, and exposes the synchronous action
// API. All exported methods are safe to call from any goroutine.
type Game struct {
	Map *Map

	cfg     *Config
	players map[string]*Player
	order   []string // join order, for deterministic iteration

	loop     *sched.Loop
	rng      *rand.Rand
	now      func() time.Time
	emit     event.Sink
	recorder *stats.Recorder

	onEnd ResultFunc
	ended bool

	// players in death order: earliest death ranks last
	deadOrder []*Player
}

// New builds a game for the given players: map, start positions,
// initial territory, one credited factory and the initial probe batch
// per player. Nothing runs until Start.
func New(profiles []event.Profile, cfg *Config, sink event.Sink, onEnd ResultFunc) (*Game, error) {
	if len(profiles) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(profiles))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("game config: %w", err)
	}
	if sink == nil {
		sink = func(event.Event) {}
	}
	if onEnd == nil {
		onEnd = func(event.Result, bool) {}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		Map:     NewMap(cfg),
		cfg:     cfg,
		players: make(map[string]*Player, len(profiles)),
		loop:    sched.NewLoop(),
		rng:     rand.New(rand.NewSource(seed)),
		now:     time.Now,
		emit:    sink,
		onEnd:   onEnd,
	}
	g.recorder = stats.NewRecorder(time.Second, g.now)

	positions := startPositions(cfg.Dim, len(profiles))
	for i, profile := range profiles {
		if _, dup := g.players[profile.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %q", profile.ID)
		}
		p := newPlayer(g, profile)
		g.players[p.ID] = p
		g.order = append(g.order, p.ID)
		g.Map.registerPlayer(p)

		if err := g.buildInitialTerritory(p, positions[i]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Start launches the game loop and the players' income jobs. The
// initial factories' expand and produce jobs were registered during
// construction.
func (g *Game) Start() {
	g.recorder.Start()
	for _, id := range g.order {
		g.players[id].startIncomeJob()
	}
	g.loop.Start()
	slog.Info("game started", "players", len(g.players), "dim", g.cfg.Dim)
}

// Stop tears the loop down. Pending behaviors are discarded.
func (g *Game) Stop() {
	g.loop.Stop()
}

// Done is closed once the game loop has exited.
func (g *Game) Done() <-chan struct{} {
	return g.loop.Done()
}

// startPositions spaces n start coordinates evenly on a circle
// inscribed in the map.
func startPositions(dim geom.Coord, n int) []geom.Coord {
	radius := min(dim.X, dim.Y) / 2
	margin := radius / 5

	out := make([]geom.Coord, n)
	for i := range out {
		angle := float64(i) / float64(n) * 2 * math.Pi
		out[i] = geom.Coord{
			X: int(float64(radius-margin)*math.Sin(angle)) + radius,
			Y: int(float64(radius-margin)*math.Cos(angle)) + radius,
		}
	}
	return out
}

// buildInitialTerritory claims the start tile up to building
// eligibility, credits and builds the initial factory, and credits
// and produces the initial probe batch.
func (g *Game) buildInitialTerritory(p *Player, origin geom.Coord) error {
	tile := g.Map.Tile(origin)
	if tile == nil {
		return fmt.Errorf("start position %v outside map", origin)
	}
	for i := 0; i < g.cfg.BuildingOccupationMin; i++ {
		tile.Claim(p)
	}

	p.money += float64(g.cfg.FactoryPrice)
	if _, err := g.buildFactoryAt(p, tile); err != nil {
		return fmt.Errorf("initial factory for %s: %w", p.ID, err)
	}

	factory := p.factories[0]
	p.money += float64(g.cfg.InitialProbes * g.cfg.ProbePrice)
	for i := 0; i < g.cfg.InitialProbes; i++ {
		factory.buildProbe()
	}
	return nil
}

// do runs fn atomically on the game loop and returns its error.
func (g *Game) do(fn func() error) error {
	var err error
	if cerr := g.loop.Call(func() { err = fn() }); cerr != nil {
		return actionErrorf(ErrGameEnded, "game is over")
	}
	return err
}

// alivePlayer resolves an acting player, rejecting unknown ids and
// dead players.
func (g *Game) alivePlayer(id string) (*Player, error) {
	p, ok := g.players[id]
	if !ok {
		return nil, actionErrorf(ErrUnknownPlayer, "unknown player %q", id)
	}
	if !p.Alive {
		return nil, actionErrorf(ErrDeadPlayer, "player %q is dead", id)
	}
	return p, nil
}

// buildFactoryAt places a factory on a validated tile and starts its
// expand and produce jobs.
func (g *Game) buildFactoryAt(p *Player, tile *Tile) (*Factory, error) {
	if !tile.CanBuild(p) {
		return nil, actionErrorf(ErrCannotBuild, "cannot build on tile %v", tile.Coord)
	}
	factory, err := p.buildFactory(tile.Coord)
	if err != nil {
		return nil, err
	}
	tile.Building = factory
	factory.startJobs()
	return factory, nil
}

// BuildFactory handles the build_factory action and returns the delta
// to broadcast.
func (g *Game) BuildFactory(playerID string, coord geom.Coord) (event.FactoryBuilt, error) {
	var out event.FactoryBuilt
	err := g.do(func() error {
		p, err := g.alivePlayer(playerID)
		if err != nil {
			return err
		}
		tile := g.Map.Tile(coord)
		if tile == nil {
			return actionErrorf(ErrInvalidTile, "tile coordinate %v is invalid", coord)
		}
		factory, err := g.buildFactoryAt(p, tile)
		if err != nil {
			return err
		}
		out = event.FactoryBuilt{
			Player:  p.ID,
			Money:   p.Money(),
			Factory: factory.fullState(),
		}
		return nil
	})
	return out, err
}

// BuildTurret handles the build_turret action and returns the delta
// to broadcast.
func (g *Game) BuildTurret(playerID string, coord geom.Coord) (event.TurretBuilt, error) {
	var out event.TurretBuilt
	err := g.do(func() error {
		p, err := g.alivePlayer(playerID)
		if err != nil {
			return err
		}
		tile := g.Map.Tile(coord)
		if tile == nil {
			return actionErrorf(ErrInvalidTile, "tile coordinate %v is invalid", coord)
		}
		if !tile.CanBuild(p) {
			return actionErrorf(ErrCannotBuild, "cannot build on tile %v", coord)
		}
		turret, err := p.buildTurret(coord)
		if err != nil {
			return err
		}
		tile.Building = turret
		turret.startJobs()
		out = event.TurretBuilt{
			Player: p.ID,
			Money:  p.Money(),
			Turret: turret.fullState(),
		}
		return nil
	})
	return out, err
}

// MoveProbes re-targets the named probes. The target tile must exist
// and not be opponent-owned. Unknown probe ids are skipped.
func (g *Game) MoveProbes(playerID string, ids []string, target geom.Coord) (event.GameStateDelta, error) {
	var out event.GameStateDelta
	err := g.do(func() error {
		p, err := g.alivePlayer(playerID)
		if err != nil {
			return err
		}
		tile := g.Map.Tile(target)
		if tile == nil {
			return actionErrorf(ErrInvalidTarget, "move target %v is invalid", target)
		}
		if tile.OwnerID != "" && !tile.ownedBy(p) {
			return actionErrorf(ErrInvalidTarget, "move target %v is opponent territory", target)
		}

		var states []event.ProbeState
		for _, id := range ids {
			probe := p.probeByID(id)
			if probe == nil {
				continue
			}
			probe.pos = probe.PosAt(g.now())
			probe.setTarget(target)
			probe.startMove()
			states = append(states, probe.state())
		}
		out = event.GameStateDelta{
			Players: []event.PlayerState{{ID: p.ID, Probes: states}},
		}
		return nil
	})
	return out, err
}

// ExplodeProbes forces the named probes to explode in place.
func (g *Game) ExplodeProbes(playerID string, ids []string) (event.GameStateDelta, error) {
	var out event.GameStateDelta
	err := g.do(func() error {
		p, err := g.alivePlayer(playerID)
		if err != nil {
			return err
		}

		var probeStates []event.ProbeState
		var tileStates []event.TileState
		for _, id := range ids {
			probe := p.probeByID(id)
			if probe == nil {
				continue
			}
			probe.pos = probe.PosAt(g.now())
			for _, tile := range probe.explode() {
				tileStates = append(tileStates, tile.state())
			}
			probeStates = append(probeStates, event.ProbeState{ID: probe.ID, Alive: event.Bool(false)})
		}
		out = event.GameStateDelta{
			Players: []event.PlayerState{{ID: p.ID, Probes: probeStates}},
		}
		if len(tileStates) > 0 {
			out.Map = &event.MapState{Tiles: tileStates}
		}
		return nil
	})
	return out, err
}

// ProbesAttack switches the named probes to the attack policy with a
// freshly selected target each.
func (g *Game) ProbesAttack(playerID string, ids []string) (event.GameStateDelta, error) {
	var out event.GameStateDelta
	err := g.do(func() error {
		p, err := g.alivePlayer(playerID)
		if err != nil {
			return err
		}

		var states []event.ProbeState
		for _, id := range ids {
			probe := p.probeByID(id)
			if probe == nil {
				continue
			}
			target, ok := p.attackTarget(probe)
			if !ok {
				continue
			}
			probe.policy = PolicyAttack
			probe.pos = probe.PosAt(g.now())
			probe.setTarget(target)
			probe.startMove()
			states = append(states, probe.state())
		}
		out = event.GameStateDelta{
			Players: []event.PlayerState{{ID: p.ID, Probes: states}},
		}
		return nil
	})
	return out, err
}

// Resign handles the resign action: the player dies immediately.
func (g *Game) Resign(playerID string) error {
	return g.do(func() error {
		p, err := g.alivePlayer(playerID)
		if err != nil {
			return err
		}
		p.die(true, false)
		return nil
	})
}

// Abort ends the game from outside, marking the result aborted.
func (g *Game) Abort() error {
	return g.do(func() error {
		g.endGame(true)
		return nil
	})
}

// Snapshot returns the full game state, for clients joining the
// stream.
func (g *Game) Snapshot() (event.GameStateDelta, error) {
	var out event.GameStateDelta
	err := g.do(func() error {
		out = g.snapshotLocked()
		return nil
	})
	return out, err
}

func (g *Game) snapshotLocked() event.GameStateDelta {
	snapshot := event.GameStateDelta{
		Map: &event.MapState{Tiles: g.Map.states()},
	}
	for _, id := range g.order {
		snapshot.Players = append(snapshot.Players, g.players[id].fullState())
	}
	return snapshot
}

// notifyDeath records a player death (dedup-guarded) and ends the
// game once all but one player are dead.
func (g *Game) notifyDeath(p *Player) {
	if g.ended {
		return
	}
	for _, dead := range g.deadOrder {
		if dead == p {
			return
		}
	}
	g.deadOrder = append(g.deadOrder, p)
	slog.Info("player died", "player", p.ID, "deaths", len(g.deadOrder))

	if len(g.deadOrder) == len(g.players)-1 {
		g.endGame(false)
	}
}

// endGame finalizes the match exactly once: survivors are finalized
// as winners, the ranking and the recorded stats are compiled, and
// the result callback fires after the configured delay.
func (g *Game) endGame(aborted bool) {
	if g.ended {
		return
	}
	g.ended = true

	var winners []*Player
	for _, id := range g.order {
		if p := g.players[id]; p.Alive {
			p.die(true, true)
			winners = append(winners, p)
		}
	}

	// winners first (co-winners keep their relative order), then the
	// dead from most recent to earliest
	ranking := winners
	for i := len(g.deadOrder) - 1; i >= 0; i-- {
		ranking = append(ranking, g.deadOrder[i])
	}

	result := event.Result{Aborted: aborted}
	for _, p := range ranking {
		result.Ranking = append(result.Ranking, event.Profile{ID: p.ID, Name: p.Name})
	}
	for _, id := range g.order {
		series := g.recorder.Compile(id)
		result.Stats = append(result.Stats, event.PlayerStats{
			Player:     id,
			Money:      series.Money,
			Occupation: series.Occupation,
			Factories:  series.Factories,
			Turrets:    series.Turrets,
			Probes:     series.Probes,
		})
	}

	slog.Info("game over", "aborted", aborted, "ranking", len(ranking))
	g.emit(event.Event{Name: event.GameResult, Payload: result})

	onEnd := g.onEnd
	g.loop.After(g.cfg.EndGameDelay, func() {
		onEnd(result, aborted)
	})
}

// Ended reports whether the game is over.
func (g *Game) Ended() bool {
	ended := true
	_ = g.do(func() error {
		ended = g.ended
		return nil
	})
	return ended
}
