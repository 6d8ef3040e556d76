package game

import "errors"

// ErrRejected matches every request the state machine refuses.
var ErrRejected = errors.New("rejected request")

// RejectedError is a request that failed a precondition. The session is left
// untouched whenever one is returned.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

func rejected(reason string) error { return &RejectedError{Reason: reason} }

var (
	ErrInvalidSize   = rejected("invalid size")
	ErrNotStarted    = rejected("game has not started")
	ErrGameOver      = rejected("game is over")
	ErrNotPlayer     = rejected("not a player of this game")
	ErrNotYourTurn   = rejected("not your turn to play")
	ErrAlreadyRolled = rejected("already rolled")
	ErrNoDice        = rejected("roll the dice first")
	ErrCannotPass    = rejected("cannot pass, a move is available")
	ErrInvalidCell   = rejected("invalid cell")
	ErrInvalidPiece  = rejected("invalid piece selection")
	ErrNeedTab       = rejected("piece not in motion, need Tab (1)")
	ErrInvalidTarget = rejected("invalid target")
	ErrSamePlayer    = rejected("cannot play against yourself")
	ErrAlreadyPaired = rejected("game already has two players")
)
