package game

import (
	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/geom"
)

// Map is the fixed-size grid of tiles. Tiles are owned exclusively by
// the map; players and entities reference them through it.
type Map struct {
	Dim   geom.Coord
	tiles []Tile

	// player registry: ownership on tiles is an id, resolved here.
	players map[string]*Player
	cfg     *Config
}

// NewMap builds a Dim.X x Dim.Y grid of unowned tiles.
func NewMap(cfg *Config) *Map {
	m := &Map{
		Dim:     cfg.Dim,
		tiles:   make([]Tile, cfg.Dim.X*cfg.Dim.Y),
		players: make(map[string]*Player),
		cfg:     cfg,
	}
	for x := 0; x < cfg.Dim.X; x++ {
		for y := 0; y < cfg.Dim.Y; y++ {
			t := &m.tiles[x*cfg.Dim.Y+y]
			t.Coord = geom.Coord{X: x, Y: y}
			t.m = m
		}
	}
	return m
}

func (m *Map) registerPlayer(p *Player) {
	m.players[p.ID] = p
}

// Tile returns the tile at the given coordinate, or nil when out of
// bounds.
func (m *Map) Tile(c geom.Coord) *Tile {
	if c.X < 0 || c.X >= m.Dim.X || c.Y < 0 || c.Y >= m.Dim.Y {
		return nil
	}
	return &m.tiles[c.X*m.Dim.Y+c.Y]
}

// NeighbourTiles returns the existing tiles within Manhattan distance
// dist of the tile, excluding the tile itself.
func (m *Map) NeighbourTiles(t *Tile, dist int) []*Tile {
	coords := geom.Square(t.Coord, dist)
	out := make([]*Tile, 0, len(coords)-1)
	for _, c := range coords {
		if c == t.Coord {
			continue
		}
		if n := m.Tile(c); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// states returns the full tile states of the map, for snapshots.
func (m *Map) states() []event.TileState {
	out := make([]event.TileState, len(m.tiles))
	for i := range m.tiles {
		out[i] = m.tiles[i].state()
	}
	return out
}
