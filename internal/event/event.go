// Package event defines the engine's outbound event stream: named
// events carrying partial state deltas. Only changed fields are
// populated; optional fields are pointers so that "unchanged" and
// "zero" stay distinguishable on the wire.
package event

import "github.com/maroulf/gridlords/internal/geom"

// Event names pushed to the transport layer.
const (
	GameState    = "game_state"
	BuildFactory = "build_factory"
	BuildTurret  = "build_turret"
	BuildProbe   = "build_probe"
	TurretFire   = "turret_fire"
	GameResult   = "game_result"
)

// Event is one named message of the push stream.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Sink consumes the engine's event stream. The engine calls it from
// the game loop; implementations must not call back into the engine.
type Sink func(Event)

// Profile is the player identity record consumed from collaborators.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TileState is the full state of one tile; tiles absent from a delta
// are unchanged.
type TileState struct {
	Coord      geom.Coord `json:"coord"`
	Owner      string     `json:"owner,omitempty"` // empty = unowned
	Occupation int        `json:"occupation"`
}

// MapState lists changed tiles.
type MapState struct {
	Tiles []TileState `json:"tiles,omitempty"`
}

// FactoryState is a partial factory representation.
type FactoryState struct {
	ID    string      `json:"id"`
	Coord *geom.Coord `json:"coord,omitempty"`
	Alive *bool       `json:"alive,omitempty"`
}

// ProbeState is a partial probe representation.
type ProbeState struct {
	ID     string      `json:"id"`
	Pos    *geom.Point `json:"pos,omitempty"`
	Target *geom.Coord `json:"target,omitempty"`
	Policy string      `json:"policy,omitempty"`
	Alive  *bool       `json:"alive,omitempty"`
}

// TurretState is a partial turret representation.
type TurretState struct {
	ID    string      `json:"id"`
	Coord *geom.Coord `json:"coord,omitempty"`
	Alive *bool       `json:"alive,omitempty"`
}

// PlayerState is a partial player representation.
type PlayerState struct {
	ID        string         `json:"id"`
	Money     *int           `json:"money,omitempty"`
	Income    *int           `json:"income,omitempty"`
	Alive     *bool          `json:"alive,omitempty"`
	Factories []FactoryState `json:"factories,omitempty"`
	Turrets   []TurretState  `json:"turrets,omitempty"`
	Probes    []ProbeState   `json:"probes,omitempty"`
}

// GameStateDelta is the payload of a game_state event.
type GameStateDelta struct {
	Map     *MapState     `json:"map,omitempty"`
	Players []PlayerState `json:"players,omitempty"`
}

// FactoryBuilt is the payload of a build_factory event.
type FactoryBuilt struct {
	Player  string       `json:"player"`
	Money   int          `json:"money"`
	Factory FactoryState `json:"factory"`
}

// TurretBuilt is the payload of a build_turret event.
type TurretBuilt struct {
	Player string      `json:"player"`
	Money  int         `json:"money"`
	Turret TurretState `json:"turret"`
}

// ProbeBuilt is the payload of a build_probe event.
type ProbeBuilt struct {
	Player string     `json:"player"`
	Money  int        `json:"money"`
	Probe  ProbeState `json:"probe"`
}

// TurretShot is the payload of a turret_fire event.
type TurretShot struct {
	Player string     `json:"player"`
	Turret string     `json:"turret"`
	Probe  ProbeState `json:"probe"`
}

// PlayerStats is one player's recorded time series, one sample per
// second of game time.
type PlayerStats struct {
	Player     string `json:"player"`
	Money      []int  `json:"money"`
	Occupation []int  `json:"occupation"`
	Factories  []int  `json:"factories"`
	Turrets    []int  `json:"turrets"`
	Probes     []int  `json:"probes"`
}

// Result is the payload of a game_result event and the value handed
// to the end-of-game callback. Ranking runs from winner to last
// place.
type Result struct {
	Ranking []Profile     `json:"ranking"`
	Stats   []PlayerStats `json:"stats"`
	Aborted bool          `json:"aborted"`
}

// Bool returns a pointer to b, for optional delta fields.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n, for optional delta fields.
func Int(n int) *int { return &n }
