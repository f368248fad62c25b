package heuristics

import (
	nchess "github.com/corentings/chess/v2"
)

// attackMap counts, per side, how many pieces attack each of the 64 squares.
// Squares occupied by friendly pieces are included, so the same map answers
// both "is this square attacked" and "is this piece defended". Sliding pieces
// stop at the first occupied square but still count it.
type attackMap struct {
	white [64]int
	black [64]int
}

func (m *attackMap) count(color nchess.Color, file, rank int) int {
	if color == nchess.White {
		return m.white[rank*8+file]
	}
	return m.black[rank*8+file]
}

func (m *attackMap) add(color nchess.Color, file, rank int) {
	if color == nchess.White {
		m.white[rank*8+file]++
	} else {
		m.black[rank*8+file]++
	}
}

// total sums attack counts over the whole board, which equals the sum of every
// piece's attacked-square count: the mobility proxy.
func (m *attackMap) total(color nchess.Color) int {
	sum := 0
	if color == nchess.White {
		for _, n := range m.white {
			sum += n
		}
		return sum
	}
	for _, n := range m.black {
		sum += n
	}
	return sum
}

var (
	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	bishopRays  = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookRays    = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

func computeAttacks(board *nchess.Board) *attackMap {
	m := &attackMap{}
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			piece := pieceAt(board, file, rank)
			if piece == nchess.NoPiece {
				continue
			}
			addPieceAttacks(m, board, piece, file, rank)
		}
	}
	return m
}

func addPieceAttacks(m *attackMap, board *nchess.Board, piece nchess.Piece, file, rank int) {
	color := piece.Color()
	switch piece.Type() {
	case nchess.Pawn:
		dir := 1
		if color == nchess.Black {
			dir = -1
		}
		for _, df := range [2]int{-1, 1} {
			if onBoard(file+df, rank+dir) {
				m.add(color, file+df, rank+dir)
			}
		}
	case nchess.Knight:
		addSteps(m, color, file, rank, knightSteps)
	case nchess.King:
		addSteps(m, color, file, rank, kingSteps)
	case nchess.Bishop:
		addRays(m, board, color, file, rank, bishopRays[:])
	case nchess.Rook:
		addRays(m, board, color, file, rank, rookRays[:])
	case nchess.Queen:
		addRays(m, board, color, file, rank, bishopRays[:])
		addRays(m, board, color, file, rank, rookRays[:])
	}
}

func addSteps(m *attackMap, color nchess.Color, file, rank int, steps [8][2]int) {
	for _, step := range steps {
		f, r := file+step[0], rank+step[1]
		if onBoard(f, r) {
			m.add(color, f, r)
		}
	}
}

func addRays(m *attackMap, board *nchess.Board, color nchess.Color, file, rank int, rays [][2]int) {
	for _, ray := range rays {
		f, r := file+ray[0], rank+ray[1]
		for onBoard(f, r) {
			m.add(color, f, r)
			if pieceAt(board, f, r) != nchess.NoPiece {
				break
			}
			f += ray[0]
			r += ray[1]
		}
	}
}

func pieceAt(board *nchess.Board, file, rank int) nchess.Piece {
	return board.Piece(nchess.NewSquare(nchess.File(file), nchess.Rank(rank)))
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

func squareName(file, rank int) string {
	return string(rune('a'+file)) + string(rune('1'+rank))
}
