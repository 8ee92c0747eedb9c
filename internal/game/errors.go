package game

import "fmt"

// ActionCode classifies why a player command was rejected.
type ActionCode uint8

const (
	ErrDeadPlayer        ActionCode = iota // acting player is no longer alive
	ErrUnknownPlayer                       // player id not part of this game
	ErrInvalidTile                         // coordinate outside the map
	ErrCannotBuild                         // tile not buildable for this player
	ErrInsufficientFunds                   // not enough money
	ErrInvalidTarget                       // move/attack target rejected
	ErrGameEnded                           // game already over
)

// ActionError is the single taxonomy for rejected player commands. An
// action either fully applies or fails with an ActionError and has no
// effect.
type ActionError struct {
	Code ActionCode
	msg  string
}

func actionErrorf(code ActionCode, format string, args ...any) *ActionError {
	return &ActionError{Code: code, msg: fmt.Sprintf(format, args...)}
}

func (e *ActionError) Error() string {
	return e.msg
}
