// Package board manages a single session's chess position: loading, move
// parsing and validation, apply/undo with replayable history, and legal-move
// enumeration. The chess rules themselves come from corentings/chess; this
// package adds the session semantics on top.
package board

import (
	"fmt"
	"iter"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Board holds one session's position and the moves applied to it. The history
// is a single authoritative pair (origin FEN, applied UCI moves); SAN labels
// are derived by replay rather than stored alongside. Not safe for concurrent
// use — one Board per session.
type Board struct {
	originFEN string
	game      *nchess.Game
	applied   []string
}

// New returns a board at the standard initial position with empty history.
func New() *Board {
	game := nchess.NewGame()
	return &Board{originFEN: game.FEN(), game: game}
}

// Load replaces the position with the one described by fen and resets the
// history. The board is unchanged when fen is rejected.
func (b *Board) Load(fen string) error {
	trimmed := strings.TrimSpace(fen)
	option, err := nchess.FEN(trimmed)
	if err != nil {
		return &InvalidPositionError{FEN: fen, Reason: err.Error()}
	}
	game := nchess.NewGame(option)
	b.game = game
	b.originFEN = game.FEN()
	b.applied = b.applied[:0]
	return nil
}

// ParseMove resolves text against the current position. SAN is tried first;
// on failure the input is read as coordinate notation (origin square +
// destination square + optional promotion letter) and accepted only if the
// resulting move is legal. Parsing never mutates the board, so parsing the
// same text twice yields the same move.
func (b *Board) ParseMove(text string) (*nchess.Move, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, b.illegal(text)
	}
	pos := b.game.Position()
	if mv, err := (nchess.AlgebraicNotation{}).Decode(pos, trimmed); err == nil {
		return mv, nil
	}
	mv, err := (nchess.UCINotation{}).Decode(pos, strings.ToLower(trimmed))
	if err != nil {
		return nil, b.illegal(text)
	}
	if !b.isLegal(mv) {
		return nil, b.illegal(text)
	}
	return mv, nil
}

// Apply pushes mv onto the position and records it in the history. Moves
// outside the current legal set are rejected without touching any state.
func (b *Board) Apply(mv *nchess.Move) error {
	if mv == nil || !b.isLegal(mv) {
		label := ""
		if mv != nil {
			label = mv.String()
		}
		return b.illegal(label)
	}
	uci := (nchess.UCINotation{}).Encode(b.game.Position(), mv)
	if err := b.game.Move(mv, nil); err != nil {
		return b.illegal(uci)
	}
	b.applied = append(b.applied, strings.ToLower(uci))
	return nil
}

// Undo reverts the most recent applied move by replaying the history prefix
// from the origin position. It returns the SAN label of the undone move.
func (b *Board) Undo() (string, error) {
	if len(b.applied) == 0 {
		return "", ErrEmptyHistory
	}
	n := len(b.applied)
	game, err := replay(b.originFEN, b.applied[:n-1])
	if err != nil {
		return "", err
	}
	last, err := (nchess.UCINotation{}).Decode(game.Position(), b.applied[n-1])
	if err != nil {
		return "", fmt.Errorf("board: relabel undone move %s: %w", b.applied[n-1], err)
	}
	label := (nchess.AlgebraicNotation{}).Encode(game.Position(), last)
	b.game = game
	b.applied = b.applied[:n-1]
	return label, nil
}

// LegalMoves returns a restartable sequence over every legal move in the
// current position. The set is recomputed each time the sequence is ranged, so
// it always reflects the live position.
func (b *Board) LegalMoves() iter.Seq[nchess.Move] {
	return func(yield func(nchess.Move) bool) {
		for _, mv := range b.game.Position().ValidMoves() {
			if !yield(mv) {
				return
			}
		}
	}
}

// LegalSAN returns the complete legal-move list in SAN.
func (b *Board) LegalSAN() []string {
	pos := b.game.Position()
	moves := pos.ValidMoves()
	out := make([]string, 0, len(moves))
	notation := nchess.AlgebraicNotation{}
	for i := range moves {
		out = append(out, notation.Encode(pos, &moves[i]))
	}
	return out
}

// Position returns the current position.
func (b *Board) Position() *nchess.Position {
	return b.game.Position()
}

// FEN returns the current position in Forsyth-Edwards notation.
func (b *Board) FEN() string {
	return b.game.FEN()
}

// OriginFEN returns the position the history replays from.
func (b *Board) OriginFEN() string {
	return b.originFEN
}

// SideToMove returns "white" or "black".
func (b *Board) SideToMove() string {
	if b.game.Position().Turn() == nchess.White {
		return "white"
	}
	return "black"
}

// HistoryUCI returns the applied moves in coordinate notation.
func (b *Board) HistoryUCI() []string {
	return append([]string(nil), b.applied...)
}

// HistorySAN derives the SAN labels of the applied moves by replaying them
// from the origin position.
func (b *Board) HistorySAN() ([]string, error) {
	game, err := replay(b.originFEN, nil)
	if err != nil {
		return nil, err
	}
	notationSAN := nchess.AlgebraicNotation{}
	notationUCI := nchess.UCINotation{}
	labels := make([]string, 0, len(b.applied))
	for _, uci := range b.applied {
		pos := game.Position()
		mv, err := notationUCI.Decode(pos, uci)
		if err != nil {
			return nil, fmt.Errorf("board: replay move %s: %w", uci, err)
		}
		labels = append(labels, notationSAN.Encode(pos, mv))
		if err := game.Move(mv, nil); err != nil {
			return nil, fmt.Errorf("board: replay move %s: %w", uci, err)
		}
	}
	return labels, nil
}

func (b *Board) isLegal(mv *nchess.Move) bool {
	want := strings.ToLower(mv.String())
	for _, legal := range b.game.Position().ValidMoves() {
		if strings.ToLower(legal.String()) == want {
			return true
		}
	}
	return false
}

func (b *Board) illegal(input string) *IllegalMoveError {
	return &IllegalMoveError{Input: input, Legal: b.LegalSAN()}
}

func replay(originFEN string, moves []string) (*nchess.Game, error) {
	option, err := nchess.FEN(originFEN)
	if err != nil {
		return nil, fmt.Errorf("board: replay origin: %w", err)
	}
	game := nchess.NewGame(option)
	notation := nchess.UCINotation{}
	for _, uci := range moves {
		mv, err := notation.Decode(game.Position(), uci)
		if err != nil {
			return nil, fmt.Errorf("board: replay move %s: %w", uci, err)
		}
		if err := game.Move(mv, nil); err != nil {
			return nil, fmt.Errorf("board: replay move %s: %w", uci, err)
		}
	}
	return game, nil
}
