// Package heuristics computes deterministic positional features from a single
// position. Extract is a pure function with no hidden state: identical input
// always yields an identical report, which the coach layer relies on when
// diffing the state before and after a candidate move.
package heuristics

import (
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-coach-core/pkg/coachdto"
)

var pieceValues = map[nchess.PieceType]int{
	nchess.Pawn:   1,
	nchess.Knight: 3,
	nchess.Bishop: 3,
	nchess.Rook:   5,
	nchess.Queen:  9,
	nchess.King:   0,
}

// The four central squares as (file, rank) pairs: d4, d5, e4, e5.
var centerSquares = [4][2]int{{3, 3}, {3, 4}, {4, 3}, {4, 4}}

// Minor-piece home squares with their undeveloped labels.
type homeSquare struct {
	file, rank int
	pieceType  nchess.PieceType
	label      string
}

var homeSquares = map[nchess.Color][]homeSquare{
	nchess.White: {
		{1, 0, nchess.Knight, "Nb1"},
		{6, 0, nchess.Knight, "Ng1"},
		{2, 0, nchess.Bishop, "Bc1"},
		{5, 0, nchess.Bishop, "Bf1"},
	},
	nchess.Black: {
		{1, 7, nchess.Knight, "Nb8"},
		{6, 7, nchess.Knight, "Ng8"},
		{2, 7, nchess.Bishop, "Bc8"},
		{5, 7, nchess.Bishop, "Bf8"},
	},
}

// Extract computes the full heuristic report for pos.
func Extract(pos *nchess.Position) coachdto.HeuristicReport {
	board := pos.Board()
	attacks := computeAttacks(board)
	return coachdto.HeuristicReport{
		Material:      material(board),
		CenterControl: centerControl(attacks),
		Activity: coachdto.SideCount{
			White: attacks.total(nchess.White),
			Black: attacks.total(nchess.Black),
		},
		KingSafety: coachdto.KingSafetyPair{
			White: kingSafety(pos, board, attacks, nchess.White),
			Black: kingSafety(pos, board, attacks, nchess.Black),
		},
		PawnStructure: coachdto.PawnIssuesPair{
			White: pawnIssues(board, nchess.White),
			Black: pawnIssues(board, nchess.Black),
		},
		Tactics:     tactics(pos, board, attacks),
		Development: development(board),
	}
}

func material(board *nchess.Board) coachdto.MaterialBalance {
	white, black := 0, 0
	eachPiece(board, func(piece nchess.Piece, file, rank int) {
		value := pieceValues[piece.Type()]
		if piece.Color() == nchess.White {
			white += value
		} else {
			black += value
		}
	})
	return coachdto.MaterialBalance{White: white, Black: black, Balance: white - black}
}

func centerControl(attacks *attackMap) coachdto.SideCount {
	counts := coachdto.SideCount{}
	for _, sq := range centerSquares {
		if attacks.count(nchess.White, sq[0], sq[1]) > 0 {
			counts.White++
		}
		if attacks.count(nchess.Black, sq[0], sq[1]) > 0 {
			counts.Black++
		}
	}
	return counts
}

func kingSafety(pos *nchess.Position, board *nchess.Board, attacks *attackMap, color nchess.Color) coachdto.KingSafety {
	safety := coachdto.KingSafety{Castled: castlingRightsConsumed(pos, color)}
	file, rank, found := kingSquare(board, color)
	if !found {
		return safety
	}
	safety.Attackers = attacks.count(color.Other(), file, rank)
	// Only the side to move can legally stand in check.
	safety.InCheck = pos.Turn() == color && safety.Attackers > 0

	dir := 1
	if color == nchess.Black {
		dir = -1
	}
	for df := -1; df <= 1; df++ {
		f, r := file+df, rank+dir
		if !onBoard(f, r) {
			continue
		}
		piece := pieceAt(board, f, r)
		if piece != nchess.NoPiece && piece.Type() == nchess.Pawn && piece.Color() == color {
			safety.PawnShield++
		}
	}
	return safety
}

func pawnIssues(board *nchess.Board, color nchess.Color) coachdto.PawnIssues {
	var perFile [8]int
	eachPiece(board, func(piece nchess.Piece, file, rank int) {
		if piece.Type() == nchess.Pawn && piece.Color() == color {
			perFile[file]++
		}
	})
	issues := coachdto.PawnIssues{}
	for f := 0; f < 8; f++ {
		if perFile[f] > 1 {
			issues.DoubledFiles = append(issues.DoubledFiles, fileName(f))
		}
		if perFile[f] == 0 {
			continue
		}
		isolated := true
		for _, adj := range [2]int{f - 1, f + 1} {
			if adj >= 0 && adj < 8 && perFile[adj] > 0 {
				isolated = false
			}
		}
		if isolated {
			issues.IsolatedFiles = append(issues.IsolatedFiles, fileName(f))
		}
	}
	return issues
}

func tactics(pos *nchess.Position, board *nchess.Board, attacks *attackMap) []coachdto.Motif {
	var motifs []coachdto.Motif
	mover := pos.Turn()
	if file, rank, found := kingSquare(board, mover); found && attacks.count(mover.Other(), file, rank) > 0 {
		motifs = append(motifs, coachdto.Motif{Type: coachdto.MotifCheck, Square: squareName(file, rank)})
	}
	eachPiece(board, func(piece nchess.Piece, file, rank int) {
		if piece.Type() == nchess.King {
			return
		}
		attacked := attacks.count(piece.Color().Other(), file, rank) > 0
		defended := attacks.count(piece.Color(), file, rank) > 0
		if attacked && !defended {
			motifs = append(motifs, coachdto.Motif{
				Type:   coachdto.MotifHanging,
				Square: squareName(file, rank),
				Piece:  fenSymbol(piece),
			})
		}
	})
	return motifs
}

func development(board *nchess.Board) coachdto.DevelopmentPair {
	pair := coachdto.DevelopmentPair{}
	for color, homes := range homeSquares {
		for _, home := range homes {
			piece := pieceAt(board, home.file, home.rank)
			if piece != nchess.NoPiece && piece.Color() == color && piece.Type() == home.pieceType {
				if color == nchess.White {
					pair.White = append(pair.White, home.label)
				} else {
					pair.Black = append(pair.Black, home.label)
				}
			}
		}
	}
	return pair
}

func eachPiece(board *nchess.Board, fn func(piece nchess.Piece, file, rank int)) {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			if piece := pieceAt(board, file, rank); piece != nchess.NoPiece {
				fn(piece, file, rank)
			}
		}
	}
}

func kingSquare(board *nchess.Board, color nchess.Color) (file, rank int, found bool) {
	eachPiece(board, func(piece nchess.Piece, f, r int) {
		if piece.Type() == nchess.King && piece.Color() == color {
			file, rank, found = f, r, true
		}
	})
	return file, rank, found
}

func castlingRightsConsumed(pos *nchess.Position, color nchess.Color) bool {
	rights := pos.CastleRights()
	return !rights.CanCastle(color, nchess.KingSide) && !rights.CanCastle(color, nchess.QueenSide)
}

var typeSymbols = map[nchess.PieceType]string{
	nchess.Pawn:   "P",
	nchess.Knight: "N",
	nchess.Bishop: "B",
	nchess.Rook:   "R",
	nchess.Queen:  "Q",
	nchess.King:   "K",
}

func fenSymbol(piece nchess.Piece) string {
	symbol := typeSymbols[piece.Type()]
	if piece.Color() == nchess.Black {
		return strings.ToLower(symbol)
	}
	return symbol
}

func fileName(file int) string {
	return string(rune('a' + file))
}
