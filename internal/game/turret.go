package game

import (
	"github.com/google/uuid"
	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/geom"
	"github.com/maroulf/gridlords/internal/sched"
)

// Turret is a static defense building. At a fixed interval it fires
// at one opposing probe whose interpolated position is within scope.
type Turret struct {
	ID    string
	Coord geom.Coord
	Alive bool

	player *Player
	jobs   *sched.JobSet
}

func newTurret(p *Player, coord geom.Coord) *Turret {
	return &Turret{
		ID:     uuid.NewString(),
		Coord:  coord,
		Alive:  true,
		player: p,
		jobs:   sched.NewJobSet(),
	}
}

// BuildingID implements Building.
func (t *Turret) BuildingID() string { return t.ID }

// conquered implements Building: the turret's tile was lost.
func (t *Turret) conquered() {
	t.die(true)
}

// Income returns the turret's income contribution: its maintenance
// cost.
func (t *Turret) Income() float64 {
	return -t.player.g.cfg.TurretMaintenanceCost
}

// startJobs registers the repeating fire behavior.
func (t *Turret) startJobs() {
	g := t.player.g
	jid := t.jobs.Spawn()
	g.loop.After(g.cfg.TurretFireDelay, func() { t.fireStep(jid) })
}

// fireStep shoots one opposing probe in scope, if any, then waits for
// the next interval.
func (t *Turret) fireStep(jid sched.JobID) {
	if !t.jobs.Active(jid) || !t.Alive {
		return
	}
	g := t.player.g

	if probe := t.pickProbe(); probe != nil {
		// the probe dies without its own broadcast: the shot carries it
		owner := probe.player
		probe.die(false)
		g.emit(event.Event{Name: event.TurretFire, Payload: event.TurretShot{
			Player: owner.ID,
			Turret: t.ID,
			Probe:  event.ProbeState{ID: probe.ID, Alive: event.Bool(false)},
		}})
	}

	g.loop.After(g.cfg.TurretFireDelay, func() { t.fireStep(jid) })
}

// pickProbe scans all opposing probes, shuffled, and returns the
// first one within scope of its current interpolated position.
func (t *Turret) pickProbe() *Probe {
	g := t.player.g
	now := g.now()

	var candidates []*Probe
	for _, id := range g.order {
		p := g.players[id]
		if p == t.player {
			continue
		}
		candidates = append(candidates, p.probes...)
	}
	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	origin := t.Coord.Point()
	for _, probe := range candidates {
		if geom.Dist(probe.PosAt(now), origin) <= g.cfg.TurretScope {
			return probe
		}
	}
	return nil
}

// die marks the turret dead, cancels its jobs and removes it from its
// player. Idempotent.
func (t *Turret) die(notify bool) {
	if !t.Alive {
		return
	}
	t.Alive = false
	t.jobs.Clear()
	t.player.removeTurret(t)

	if tile := t.player.g.Map.Tile(t.Coord); tile != nil && tile.Building == t {
		tile.Building = nil
	}

	if notify {
		t.player.g.emit(event.Event{Name: event.GameState, Payload: event.GameStateDelta{
			Players: []event.PlayerState{{
				ID:      t.player.ID,
				Turrets: []event.TurretState{{ID: t.ID, Alive: event.Bool(false)}},
			}},
		}})
	}
}

// fullState returns the complete turret representation.
func (t *Turret) fullState() event.TurretState {
	coord := t.Coord
	return event.TurretState{
		ID:    t.ID,
		Coord: &coord,
		Alive: event.Bool(t.Alive),
	}
}
