package server

import (
	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/geom"
)

// Client action names accepted on the websocket.
const (
	actionBuildFactory  = "build_factory"
	actionBuildTurret   = "build_turret"
	actionMoveProbes    = "move_probes"
	actionExplodeProbes = "explode_probes"
	actionProbesAttack  = "probes_attack"
	actionResign        = "resign"
)

// actionMessage is the envelope of one inbound client command. Coord
// is the build target, Probes the acted-on probe ids, Target the move
// destination.
type actionMessage struct {
	Action string      `json:"action"`
	Coord  *geom.Coord `json:"coord,omitempty"`
	Probes []string    `json:"probes,omitempty"`
	Target *geom.Coord `json:"target,omitempty"`
}

// actionError is pushed back to the sender when a command is rejected.
type actionError struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}

// createGameRequest is the body of POST /api/games.
type createGameRequest struct {
	Players []event.Profile `json:"players"`
}

// createGameResponse returns the new game's id.
type createGameResponse struct {
	GameID string `json:"game_id"`
}
