// Package coachdto defines the structured fact payloads exchanged with the
// downstream reasoning layer. Everything here is plain data: no prose, no
// back-references to the components that produced it.
package coachdto

// EngineLine is a single evaluated line from the analysis engine. ScoreCP is
// expressed from the perspective of the side to move in the analyzed position;
// Mate is the number of moves to forced mate (negative when the mover is the
// one being mated), 0 when no forced mate exists.
type EngineLine struct {
	MoveUCI   string   `json:"move_uci"`
	MoveSAN   string   `json:"move_san"`
	ScoreCP   int      `json:"score_cp"`
	Mate      int      `json:"mate,omitempty"`
	Principal []string `json:"pv,omitempty"`
}

// PositionFacts is the ground-truth payload for a position analysis request.
type PositionFacts struct {
	SessionID  string          `json:"session_id"`
	FEN        string          `json:"fen"`
	SideToMove string          `json:"side_to_move"`
	TopMoves   []EngineLine    `json:"top_moves"`
	Heuristics HeuristicReport `json:"heuristics"`
}

// MoveComparison is the ground-truth payload for a best-vs-candidate request.
// DeltaCP compares both evaluations from the perspective of the side to move
// before the candidate move: positive means the candidate is worse than the
// engine's best by that many centipawns, 0 means the candidate is the best
// move.
type MoveComparison struct {
	SessionID        string          `json:"session_id"`
	FEN              string          `json:"fen"`
	SideToMove       string          `json:"side_to_move"`
	BestMove         EngineLine      `json:"best_move"`
	CandidateMove    EngineLine      `json:"candidate_move"`
	DeltaCP          int             `json:"delta_cp"`
	TopMoves         []EngineLine    `json:"top_moves"`
	HeuristicsBefore HeuristicReport `json:"heuristics_before"`
	HeuristicsAfter  HeuristicReport `json:"heuristics_after"`
}
