package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyHistory is returned by Undo when no moves have been applied since
// the last Load.
var ErrEmptyHistory = errors.New("board: no moves to undo")

// InvalidPositionError reports a FEN string that failed to parse or describes
// an unreachable position.
type InvalidPositionError struct {
	FEN    string
	Reason string
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("board: invalid position %q: %s", e.FEN, e.Reason)
}

// IllegalMoveError reports input that is neither valid SAN nor a legal
// coordinate move. Legal always carries the complete legal-move list of the
// position, in SAN, so callers can offer alternatives.
type IllegalMoveError struct {
	Input string
	Legal []string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("board: illegal move %q (legal: %s)", e.Input, strings.Join(e.Legal, " "))
}
