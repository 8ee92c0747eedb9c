package game

import (
	"sort"

	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/geom"
	"github.com/maroulf/gridlords/internal/sched"
	"github.com/maroulf/gridlords/internal/stats"
)

// Player holds one participant's economy and entity collections. A
// player dies when their last factory falls or they resign.
type Player struct {
	ID    string
	Name  string
	Alive bool

	// money accumulates fractional income internally; Money exposes
	// the integer value reported to clients.
	money float64

	factories []*Factory
	turrets   []*Turret
	probes    []*Probe
	tiles     []*Tile

	jobs *sched.JobSet
	g    *Game
}

func newPlayer(g *Game, profile event.Profile) *Player {
	return &Player{
		ID:    profile.ID,
		Name:  profile.Name,
		Alive: true,
		money: float64(g.cfg.InitialMoney),
		jobs:  sched.NewJobSet(),
		g:     g,
	}
}

// Money returns the player's current funds.
func (p *Player) Money() int {
	return int(p.money)
}

// Income returns the player's per-second income: base income plus
// tile income minus entity maintenance.
func (p *Player) Income() float64 {
	income := p.g.cfg.BaseIncome
	for _, f := range p.factories {
		income += f.Income()
	}
	for _, t := range p.turrets {
		income += t.Income()
	}
	for _, t := range p.tiles {
		income += t.Income()
	}
	return income
}

// Tiles returns the number of tiles the player holds.
func (p *Player) Tiles() int {
	return len(p.tiles)
}

// Factories returns the number of live factories.
func (p *Player) Factories() int {
	return len(p.factories)
}

// Probes returns the number of live probes.
func (p *Player) Probes() int {
	return len(p.probes)
}

// addTile and removeTile keep the membership list in sync with tile
// ownership. Only Tile.Claim calls them.
func (p *Player) addTile(t *Tile) {
	for _, held := range p.tiles {
		if held == t {
			return
		}
	}
	p.tiles = append(p.tiles, t)
}

func (p *Player) removeTile(t *Tile) {
	for i, held := range p.tiles {
		if held == t {
			p.tiles = append(p.tiles[:i], p.tiles[i+1:]...)
			return
		}
	}
}

// buildFactory debits the factory price and creates the factory.
// Placement validation is the action layer's concern.
func (p *Player) buildFactory(coord geom.Coord) (*Factory, error) {
	if p.money < float64(p.g.cfg.FactoryPrice) {
		return nil, actionErrorf(ErrInsufficientFunds, "not enough money (%d)", p.Money())
	}
	p.money -= float64(p.g.cfg.FactoryPrice)

	f := newFactory(p, coord)
	p.factories = append(p.factories, f)
	return f, nil
}

// buildTurret debits the turret price and creates the turret.
func (p *Player) buildTurret(coord geom.Coord) (*Turret, error) {
	if p.money < float64(p.g.cfg.TurretPrice) {
		return nil, actionErrorf(ErrInsufficientFunds, "not enough money (%d)", p.Money())
	}
	p.money -= float64(p.g.cfg.TurretPrice)

	t := newTurret(p, coord)
	p.turrets = append(p.turrets, t)
	return t, nil
}

// buildProbe debits the probe price and creates a probe at the given
// position, or returns nil when funds are insufficient. Production
// simply idles in that case, so this is not an error.
func (p *Player) buildProbe(pos geom.Point) *Probe {
	if p.money < float64(p.g.cfg.ProbePrice) {
		return nil
	}
	p.money -= float64(p.g.cfg.ProbePrice)

	probe := newProbe(p, pos)
	p.probes = append(p.probes, probe)
	return probe
}

func (p *Player) probeByID(id string) *Probe {
	for _, probe := range p.probes {
		if probe.ID == id {
			return probe
		}
	}
	return nil
}

func (p *Player) removeProbe(probe *Probe) {
	for i, held := range p.probes {
		if held == probe {
			p.probes = append(p.probes[:i], p.probes[i+1:]...)
			return
		}
	}
}

func (p *Player) removeFactory(f *Factory) {
	for i, held := range p.factories {
		if held == f {
			p.factories = append(p.factories[:i], p.factories[i+1:]...)
			return
		}
	}
}

func (p *Player) removeTurret(t *Turret) {
	for i, held := range p.turrets {
		if held == t {
			p.turrets = append(p.turrets[:i], p.turrets[i+1:]...)
			return
		}
	}
}

// factoryWithCapacity returns the first factory with room in its
// probe pool, for re-homing orphaned probes.
func (p *Player) factoryWithCapacity() *Factory {
	for _, f := range p.factories {
		if f.capacity() > 0 {
			return f
		}
	}
	return nil
}

// farmTargetNear scans square(origin, 3) in shuffled order and
// returns the first tile worth farming. Rejected tiles: held by an
// opponent with occupation above 3, already at max occupation, or
// not self-held with low occupation and no own tile adjacent
// (isolated — claiming it could never hold).
func (p *Player) farmTargetNear(origin geom.Coord) (geom.Coord, bool) {
	coords := geom.Square(origin, 3)
	candidates := make([]geom.Coord, 0, len(coords)-1)
	for _, c := range coords {
		if c != origin {
			candidates = append(candidates, c)
		}
	}
	p.g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, c := range candidates {
		tile := p.g.Map.Tile(c)
		if tile == nil {
			continue
		}
		if !tile.ownedBy(p) && tile.Occupation > 3 {
			continue
		}
		if tile.Occupation == p.g.cfg.MaxOccupation {
			continue
		}
		if !tile.ownedBy(p) && tile.Occupation < 3 {
			owned := false
			for _, n := range p.g.Map.NeighbourTiles(tile, 1) {
				if n.ownedBy(p) {
					owned = true
					break
				}
			}
			if !owned {
				continue
			}
		}
		return c, true
	}
	return geom.Coord{}, false
}

// farmTarget picks the probe's next farm target: first around the
// probe itself, then around each factory in ascending distance order.
// When everything is saturated the probe's own coordinate is returned
// and the probe waits in place.
func (p *Player) farmTarget(probe *Probe) geom.Coord {
	origin := probe.Coord()
	if target, ok := p.farmTargetNear(origin); ok {
		return target
	}

	factories := make([]*Factory, len(p.factories))
	copy(factories, p.factories)
	sort.Slice(factories, func(i, j int) bool {
		di := geom.Dist(factories[i].Coord.Point(), origin.Point())
		dj := geom.Dist(factories[j].Coord.Point(), origin.Point())
		return di < dj
	})
	for _, f := range factories {
		if target, ok := p.farmTargetNear(f.Coord); ok {
			return target
		}
	}
	return origin
}

// attackTarget finds the opponent-owned tile nearest to the probe,
// then returns one shuffled opponent tile from that tile's distance-3
// neighborhood. Reports false when no opponent holds any tile.
func (p *Player) attackTarget(probe *Probe) (geom.Coord, bool) {
	var enemyTiles []*Tile
	for _, id := range p.g.order {
		other := p.g.players[id]
		if other == p {
			continue
		}
		enemyTiles = append(enemyTiles, other.tiles...)
	}
	if len(enemyTiles) == 0 {
		return geom.Coord{}, false
	}

	pos := probe.PosAt(p.g.now())
	nearest := enemyTiles[0]
	best := geom.Dist(nearest.Coord.Point(), pos)
	for _, t := range enemyTiles[1:] {
		if d := geom.Dist(t.Coord.Point(), pos); d < best {
			nearest, best = t, d
		}
	}

	region := append(p.g.Map.NeighbourTiles(nearest, 3), nearest)
	p.g.rng.Shuffle(len(region), func(i, j int) {
		region[i], region[j] = region[j], region[i]
	})
	for _, t := range region {
		if t.OwnerID != "" && !t.ownedBy(p) {
			return t.Coord, true
		}
	}
	// nearest itself is opponent-owned, so the loop cannot miss; keep
	// the fallback for safety.
	return nearest.Coord, true
}

// startIncomeJob registers the repeating 1-second economy tick.
func (p *Player) startIncomeJob() {
	jid := p.jobs.Spawn()
	p.g.loop.After(incomeInterval, func() { p.incomeStep(jid) })
}

// incomeStep collects income, decays over-occupied tiles, records the
// stats sample and surfaces the delta.
func (p *Player) incomeStep(jid sched.JobID) {
	if !p.jobs.Active(jid) || !p.Alive {
		return
	}
	g := p.g

	income := p.Income()
	p.money += income
	if p.money < 0 {
		p.money = 0
	}

	var decayed []event.TileState
	occupation := 0
	for _, tile := range p.tiles {
		occupation += tile.Occupation
		if s, ok := p.deprecateTile(tile); ok {
			decayed = append(decayed, s)
		}
	}

	g.recorder.Record(p.ID, stats.Sample{
		Money:      p.Money(),
		Occupation: occupation,
		Factories:  len(p.factories),
		Turrets:    len(p.turrets),
		Probes:     len(p.probes),
	})

	delta := event.GameStateDelta{
		Players: []event.PlayerState{{
			ID:     p.ID,
			Money:  event.Int(p.Money()),
			Income: event.Int(int(income)),
		}},
	}
	if len(decayed) > 0 {
		delta.Map = &event.MapState{Tiles: decayed}
	}
	g.emit(event.Event{Name: event.GameState, Payload: delta})

	g.loop.After(incomeInterval, func() { p.incomeStep(jid) })
}

// deprecateTile rolls the decay probability for a tile held above
// occupation 5 and decrements it on success.
func (p *Player) deprecateTile(tile *Tile) (event.TileState, bool) {
	if tile.Occupation <= 5 {
		return event.TileState{}, false
	}
	prob := float64(tile.Occupation-5) / float64(p.g.cfg.MaxOccupation-5)
	prob *= p.g.cfg.DeprecateRate

	if p.g.rng.Float64() <= prob {
		tile.Occupation--
		return tile.state(), true
	}
	return event.TileState{}, false
}

// die finalizes the player: idempotent, cancels all jobs and cascades
// death to every entity without per-entity broadcast. Unless the
// player is being finalized as a winner, the game is notified first
// (which may end it). With notify set, one consolidated delta is
// emitted.
func (p *Player) die(notify, isWinner bool) {
	if !p.Alive {
		return
	}
	p.Alive = false
	p.jobs.Clear()

	if !isWinner {
		p.g.notifyDeath(p)
	}

	factories := make([]*Factory, len(p.factories))
	copy(factories, p.factories)
	turrets := make([]*Turret, len(p.turrets))
	copy(turrets, p.turrets)
	probes := make([]*Probe, len(p.probes))
	copy(probes, p.probes)

	state := event.PlayerState{ID: p.ID, Alive: event.Bool(false)}
	for _, f := range factories {
		f.die(false, false)
		state.Factories = append(state.Factories, event.FactoryState{ID: f.ID, Alive: event.Bool(false)})
	}
	for _, t := range turrets {
		t.die(false)
		state.Turrets = append(state.Turrets, event.TurretState{ID: t.ID, Alive: event.Bool(false)})
	}
	for _, probe := range probes {
		probe.die(false)
		state.Probes = append(state.Probes, event.ProbeState{ID: probe.ID, Alive: event.Bool(false)})
	}

	if notify {
		p.g.emit(event.Event{Name: event.GameState, Payload: event.GameStateDelta{
			Players: []event.PlayerState{state},
		}})
	}
}

// fullState returns the complete player representation, for
// snapshots.
func (p *Player) fullState() event.PlayerState {
	s := event.PlayerState{
		ID:     p.ID,
		Money:  event.Int(p.Money()),
		Income: event.Int(int(p.Income())),
		Alive:  event.Bool(p.Alive),
	}
	for _, f := range p.factories {
		s.Factories = append(s.Factories, f.fullState())
	}
	for _, t := range p.turrets {
		s.Turrets = append(s.Turrets, t.fullState())
	}
	for _, probe := range p.probes {
		s.Probes = append(s.Probes, probe.fullState())
	}
	return s
}
