package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/geom"
	"github.com/maroulf/gridlords/internal/sched"
)

// Policy is a probe's current behavior mode.
type Policy uint8

const (
	PolicyFarm   Policy = iota // claim tiles for the owner
	PolicyAttack               // explode on opponent territory
)

// String returns the wire name of the policy.
func (p Policy) String() string {
	if p == PolicyAttack {
		return "ATTACK"
	}
	return "FARM"
}

// Probe is the mobile unit produced by a factory. It travels to a
// target tile and, depending on its policy, claims it or explodes on
// it. Movement is interpolated: pos is the position at departure,
// PosAt derives the current one.
type Probe struct {
	ID     string
	Alive  bool
	policy Policy

	player  *Player
	factory *Factory // producing factory, nil once orphaned

	pos    geom.Point
	target geom.Coord

	// kinematic state, reset by setTarget
	departure      time.Time
	travelDuration time.Duration
	travelVec      geom.Point // unit direction

	jobs *sched.JobSet
}

func newProbe(p *Player, pos geom.Point) *Probe {
	return &Probe{
		ID:     uuid.NewString(),
		Alive:  true,
		player: p,
		pos:    pos,
		target: pos.Coord(),
		jobs:   sched.NewJobSet(),
	}
}

// Coord returns the probe's current grid coordinate.
func (p *Probe) Coord() geom.Coord {
	return p.PosAt(p.player.g.now()).Coord()
}

// Target returns the probe's destination coordinate.
func (p *Probe) Target() geom.Coord {
	return p.target
}

// Policy returns the probe's behavior mode.
func (p *Probe) Policy() Policy {
	return p.policy
}

// setTarget records a new destination and resets the kinematic state:
// departure time, travel duration and unit travel vector.
func (p *Probe) setTarget(target geom.Coord) {
	cfg := p.player.g.cfg
	p.departure = p.player.g.now()
	p.target = target

	delta := target.Point().Sub(p.pos)
	dist := delta.Norm()
	p.travelDuration = time.Duration(dist / cfg.ProbeSpeed * float64(time.Second))
	p.travelVec = delta.Normalized()
}

// PosAt returns the interpolated position at the given time, clamped
// at the target once the travel duration has elapsed.
func (p *Probe) PosAt(now time.Time) geom.Point {
	elapsed := now.Sub(p.departure)
	if elapsed >= p.travelDuration {
		return p.target.Point()
	}
	speed := p.player.g.cfg.ProbeSpeed
	return p.pos.Add(p.travelVec.Mul(speed * elapsed.Seconds()))
}

// startMove cancels any previous movement job and schedules a new one
// that wakes up when the probe reaches its target.
func (p *Probe) startMove() {
	p.jobs.Clear()
	jid := p.jobs.Spawn()

	remaining := time.Until(p.departure.Add(p.travelDuration))
	if remaining < 0 {
		remaining = 0
	}
	p.player.g.loop.After(remaining, func() { p.arrive(jid) })
}

func (p *Probe) arrive(jid sched.JobID) {
	if !p.jobs.Active(jid) || !p.Alive {
		return
	}
	// snap to the target tile
	p.pos = p.target.Point()
	p.travelDuration = 0

	switch p.policy {
	case PolicyAttack:
		p.behaveAttack(jid)
	default:
		p.behaveFarm(jid)
	}
}

// behaveFarm claims the reached tile, then holds for the claim delay
// before choosing the next farm target. The hold guards against a
// manual re-target racing the next automatic claim.
func (p *Probe) behaveFarm(jid sched.JobID) {
	g := p.player.g
	if tile := g.Map.Tile(p.pos.Coord()); tile != nil {
		tile.Claim(p.player)
		g.emit(event.Event{Name: event.GameState, Payload: event.GameStateDelta{
			Map: &event.MapState{Tiles: []event.TileState{tile.state()}},
		}})
	}
	g.loop.After(g.cfg.ProbeClaimDelay, func() { p.nextFarmMove(jid) })
}

// nextFarmMove picks the next farm target. When none can be found the
// probe waits in place and re-polls every claim delay.
func (p *Probe) nextFarmMove(jid sched.JobID) {
	if !p.jobs.Active(jid) || !p.Alive {
		return
	}
	g := p.player.g
	next := p.player.farmTarget(p)
	if next == p.pos.Coord() {
		g.loop.After(g.cfg.ProbeClaimDelay, func() { p.nextFarmMove(jid) })
		return
	}
	p.moveTo(jid, next)
}

// behaveAttack explodes on opponent territory. A target that turned
// unowned or friendly while in transit is stale: the probe re-targets
// instead, falling back to farming when no opponent tile remains.
func (p *Probe) behaveAttack(jid sched.JobID) {
	g := p.player.g
	tile := g.Map.Tile(p.pos.Coord())

	if tile != nil && tile.OwnerID != "" && !tile.ownedBy(p.player) {
		tiles := p.explode()
		states := make([]event.TileState, len(tiles))
		for i, t := range tiles {
			states[i] = t.state()
		}
		g.emit(event.Event{Name: event.GameState, Payload: event.GameStateDelta{
			Map: &event.MapState{Tiles: states},
			Players: []event.PlayerState{{
				ID:     p.player.ID,
				Probes: []event.ProbeState{{ID: p.ID, Alive: event.Bool(false)}},
			}},
		}})
		return
	}

	// stale target
	if next, ok := p.player.attackTarget(p); ok {
		p.moveTo(jid, next)
		return
	}
	p.policy = PolicyFarm
	p.nextFarmMove(jid)
}

// moveTo sets the target, surfaces the course change and schedules
// the arrival step.
func (p *Probe) moveTo(jid sched.JobID, target geom.Coord) {
	g := p.player.g
	p.setTarget(target)
	g.emit(event.Event{Name: event.GameState, Payload: event.GameStateDelta{
		Players: []event.PlayerState{{
			ID:     p.player.ID,
			Probes: []event.ProbeState{p.state()},
		}},
	}})

	remaining := time.Until(p.departure.Add(p.travelDuration))
	if remaining < 0 {
		remaining = 0
	}
	g.loop.After(remaining, func() { p.arrive(jid) })
}

// explode claims every opponent-held tile within distance 1 of the
// impact twice in the attacker's favor, then kills the probe. The
// caller decides whether and how to broadcast.
func (p *Probe) explode() []*Tile {
	g := p.player.g
	impact := p.pos.Coord()

	var changed []*Tile
	for _, c := range geom.Square(impact, 1) {
		tile := g.Map.Tile(c)
		if tile == nil || tile.OwnerID == "" || tile.ownedBy(p.player) {
			continue
		}
		tile.Claim(p.player)
		tile.Claim(p.player)
		changed = append(changed, tile)
	}

	p.die(false)
	return changed
}

// die marks the probe dead, cancels its jobs and detaches it from its
// player and factory. Idempotent.
func (p *Probe) die(notify bool) {
	if !p.Alive {
		return
	}
	p.Alive = false
	p.jobs.Clear()

	p.player.removeProbe(p)
	if p.factory != nil {
		p.factory.removeProbe(p)
		p.factory = nil
	}

	if notify {
		p.player.g.emit(event.Event{Name: event.GameState, Payload: event.GameStateDelta{
			Players: []event.PlayerState{{
				ID:     p.player.ID,
				Probes: []event.ProbeState{{ID: p.ID, Alive: event.Bool(false)}},
			}},
		}})
	}
}

// state returns the partial probe state after a course change.
func (p *Probe) state() event.ProbeState {
	pos := p.pos
	target := p.target
	return event.ProbeState{
		ID:     p.ID,
		Pos:    &pos,
		Target: &target,
		Policy: p.policy.String(),
	}
}

// fullState returns the complete probe representation, for snapshots
// and build events.
func (p *Probe) fullState() event.ProbeState {
	s := p.state()
	s.Alive = event.Bool(p.Alive)
	return s
}
