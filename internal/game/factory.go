package game

import (
	"github.com/google/uuid"
	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/geom"
	"github.com/maroulf/gridlords/internal/sched"
)

// expandStages is the largest square distance claimed by a factory's
// one-shot expansion behavior.
const expandStages = 3

// Factory produces probes and holds a bounded pool of them. On
// construction it expands the owner's territory in three staged
// claims around its tile.
type Factory struct {
	ID    string
	Coord geom.Coord
	Alive bool

	player *Player
	probes []*Probe

	jobs *sched.JobSet
}

func newFactory(p *Player, coord geom.Coord) *Factory {
	return &Factory{
		ID:     uuid.NewString(),
		Coord:  coord,
		Alive:  true,
		player: p,
		jobs:   sched.NewJobSet(),
	}
}

// BuildingID implements Building.
func (f *Factory) BuildingID() string { return f.ID }

// conquered implements Building: the factory's tile was lost.
func (f *Factory) conquered() {
	f.die(true, true)
}

// Income returns the factory's income contribution: the maintenance
// cost of its probe pool.
func (f *Factory) Income() float64 {
	return -float64(len(f.probes)) * f.player.g.cfg.ProbeMaintenanceCost
}

// startJobs registers the expand and produce behaviors on the game
// loop.
func (f *Factory) startJobs() {
	g := f.player.g
	expandID := f.jobs.Spawn()
	g.loop.After(g.cfg.FactoryExpandDelay, func() { f.expandStep(expandID, 1) })

	produceID := f.jobs.Spawn()
	g.loop.After(g.cfg.FactoryBuildProbeDelay, func() { f.produceStep(produceID) })
}

// expandStep claims square(coord, stage) for the owner, then waits for
// the next stage. One-shot: the job ends after the last stage, and
// any stage is dropped if the job was revoked meanwhile.
func (f *Factory) expandStep(jid sched.JobID, stage int) {
	if !f.jobs.Active(jid) || !f.Alive {
		return
	}
	g := f.player.g

	var tiles []event.TileState
	for _, c := range geom.Square(f.Coord, stage) {
		tile := g.Map.Tile(c)
		if tile == nil {
			continue
		}
		tile.Claim(f.player)
		tiles = append(tiles, tile.state())
	}
	g.emit(event.Event{Name: event.GameState, Payload: event.GameStateDelta{
		Map: &event.MapState{Tiles: tiles},
	}})

	if stage < expandStages {
		g.loop.After(g.cfg.FactoryExpandDelay, func() { f.expandStep(jid, stage+1) })
	} else {
		f.jobs.Revoke(jid)
	}
}

// produceStep builds one probe per production delay while the pool is
// not full and the player's funds permit, and idles otherwise.
func (f *Factory) produceStep(jid sched.JobID) {
	if !f.jobs.Active(jid) || !f.Alive {
		return
	}
	g := f.player.g

	if len(f.probes) < g.cfg.FactoryMaxProbe {
		f.buildProbe()
	}
	g.loop.After(g.cfg.FactoryBuildProbeDelay, func() { f.produceStep(jid) })
}

// buildProbe creates a probe at the factory if the player can afford
// it. The initial farm target is computed before the creation event
// is surfaced, so clients never see a probe without a course. Returns
// nil when funds are insufficient.
func (f *Factory) buildProbe() *Probe {
	g := f.player.g
	probe := f.player.buildProbe(f.Coord.Point())
	if probe == nil {
		return nil
	}
	probe.factory = f
	f.probes = append(f.probes, probe)

	probe.setTarget(f.player.farmTarget(probe))

	g.emit(event.Event{Name: event.BuildProbe, Payload: event.ProbeBuilt{
		Player: f.player.ID,
		Money:  f.player.Money(),
		Probe:  probe.fullState(),
	}})

	probe.startMove()
	return probe
}

// capacity returns the number of probes the factory can still take.
func (f *Factory) capacity() int {
	return f.player.g.cfg.FactoryMaxProbe - len(f.probes)
}

func (f *Factory) removeProbe(p *Probe) {
	for i, probe := range f.probes {
		if probe == p {
			f.probes = append(f.probes[:i], f.probes[i+1:]...)
			return
		}
	}
}

// die marks the factory dead, cancels its jobs and removes it from
// its player. With checkLoss set, losing the last factory defers to
// the player's own death instead of finalizing here. Otherwise the
// surviving probes are handed to sibling factories first-fit by
// remaining capacity; probes that fit nowhere die with the factory.
// Idempotent.
func (f *Factory) die(notify, checkLoss bool) {
	if !f.Alive {
		return
	}
	f.Alive = false
	f.jobs.Clear()
	f.player.removeFactory(f)

	if tile := f.player.g.Map.Tile(f.Coord); tile != nil && tile.Building == f {
		tile.Building = nil
	}

	if checkLoss && len(f.player.factories) == 0 && f.player.Alive {
		// loss condition: the whole player goes down with the factory
		f.player.die(notify, false)
		return
	}

	orphans := f.probes
	f.probes = nil

	var deadProbes []event.ProbeState
	for _, probe := range orphans {
		probe.factory = nil
		if home := f.player.factoryWithCapacity(); home != nil {
			probe.factory = home
			home.probes = append(home.probes, probe)
			continue
		}
		probe.die(false)
		deadProbes = append(deadProbes, event.ProbeState{ID: probe.ID, Alive: event.Bool(false)})
	}

	if notify {
		f.player.g.emit(event.Event{Name: event.GameState, Payload: event.GameStateDelta{
			Players: []event.PlayerState{{
				ID:        f.player.ID,
				Factories: []event.FactoryState{{ID: f.ID, Alive: event.Bool(false)}},
				Probes:    deadProbes,
			}},
		}})
	}
}

// fullState returns the complete factory representation.
func (f *Factory) fullState() event.FactoryState {
	coord := f.Coord
	return event.FactoryState{
		ID:    f.ID,
		Coord: &coord,
		Alive: event.Bool(f.Alive),
	}
}
