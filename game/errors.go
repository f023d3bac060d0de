package game

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is wrapped by every IllegalMoveError.
var ErrIllegalMove = errors.New("illegal move")

// IllegalMoveError reports a move rejected by MakeMove. Callers may recover by
// choosing another move.
type IllegalMoveError struct {
	Move   Move
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %v: %s", e.Move, e.Reason)
}

func (e *IllegalMoveError) Unwrap() error {
	return ErrIllegalMove
}
