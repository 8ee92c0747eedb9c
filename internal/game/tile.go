package game

import (
	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/geom"
)

// Building is a structure standing on a tile: a factory or a turret.
type Building interface {
	BuildingID() string
	// conquered destroys the building after its tile's occupation
	// dropped to zero.
	conquered()
}

// Tile is one cell of the grid. Occupation scores how strongly the
// owner holds the tile; it gates building eligibility and income.
//
// Invariant: Occupation > 0 exactly when OwnerID is set. All mutation
// of ownership and occupation goes through Claim.
type Tile struct {
	Coord      geom.Coord
	OwnerID    string // empty = unowned
	Occupation int
	Building   Building

	m *Map
}

// Owner resolves the owning player, or nil for an unowned tile.
func (t *Tile) Owner() *Player {
	if t.OwnerID == "" {
		return nil
	}
	return t.m.players[t.OwnerID]
}

// ownedBy reports whether the tile is held by the given player.
func (t *Tile) ownedBy(p *Player) bool {
	return t.OwnerID == p.ID
}

// Claim claims the tile for a player: the sole mutation point of
// ownership and occupation. An unowned tile becomes the player's, the
// player's own tile gains occupation (capped), an opponent's tile
// loses occupation and is released at zero, destroying any building
// on it.
//
// Returns true if the tile is held by the claiming player afterwards.
func (t *Tile) Claim(p *Player) bool {
	switch {
	case t.OwnerID == "":
		t.OwnerID = p.ID
		t.Occupation = 1
		p.addTile(t)
		return true

	case t.OwnerID == p.ID:
		t.Occupation = min(t.Occupation+1, t.m.cfg.MaxOccupation)
		return true

	default:
		t.Occupation--
		if t.Occupation == 0 {
			if prev := t.m.players[t.OwnerID]; prev != nil {
				prev.removeTile(t)
			}
			if t.Building != nil {
				b := t.Building
				t.Building = nil
				b.conquered()
			}
			t.OwnerID = ""
		}
		return false
	}
}

// CanBuild reports whether the player may place a building here: no
// existing building, owned by the player, and occupation at least the
// configured minimum.
func (t *Tile) CanBuild(p *Player) bool {
	return t.Building == nil &&
		t.OwnerID == p.ID &&
		t.Occupation >= t.m.cfg.BuildingOccupationMin
}

// Income returns the per-second income generated by the tile.
func (t *Tile) Income() float64 {
	return float64(t.Occupation) * t.m.cfg.IncomeRate
}

func (t *Tile) state() event.TileState {
	return event.TileState{
		Coord:      t.Coord,
		Owner:      t.OwnerID,
		Occupation: t.Occupation,
	}
}
