package coach

import (
	"errors"

	"github.com/park285/chess-coach-core/internal/board"
	"github.com/park285/chess-coach-core/internal/engine"
	"github.com/park285/chess-coach-core/pkg/coachdto"
)

// ToDomainError maps an internal error onto the boundary error shape. Illegal
// moves carry the complete legal-move list so the downstream layer can offer
// alternatives.
func ToDomainError(err error) coachdto.DomainError {
	var illegal *board.IllegalMoveError
	var invalid *board.InvalidPositionError

	switch {
	case errors.As(err, &illegal):
		return coachdto.DomainError{
			Code:       coachdto.CodeIllegalMove,
			Message:    err.Error(),
			LegalMoves: illegal.Legal,
		}
	case errors.As(err, &invalid):
		return coachdto.DomainError{Code: coachdto.CodeInvalidPosition, Message: err.Error()}
	case errors.Is(err, board.ErrEmptyHistory):
		return coachdto.DomainError{Code: coachdto.CodeEmptyHistory, Message: err.Error()}
	case errors.Is(err, engine.ErrEngineTimeout):
		return coachdto.DomainError{Code: coachdto.CodeEngineTimeout, Message: err.Error(), Retryable: true}
	case errors.Is(err, engine.ErrEngineUnavailable):
		return coachdto.DomainError{Code: coachdto.CodeEngineUnavailable, Message: err.Error()}
	case errors.Is(err, engine.ErrProtocol):
		return coachdto.DomainError{Code: coachdto.CodeEngineProtocol, Message: err.Error()}
	default:
		return coachdto.DomainError{Code: "internal", Message: err.Error()}
	}
}
