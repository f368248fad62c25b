package coachdto

// HeuristicReport holds every positional feature extracted from a single
// position. It is a pure function of that position; the coach layer diffs two
// reports to describe what a move changed.
type HeuristicReport struct {
	Material      MaterialBalance `json:"material"`
	CenterControl SideCount       `json:"center_control"`
	Activity      SideCount       `json:"activity"`
	KingSafety    KingSafetyPair  `json:"king_safety"`
	PawnStructure PawnIssuesPair  `json:"pawn_structure"`
	Tactics       []Motif         `json:"tactics,omitempty"`
	Development   DevelopmentPair `json:"development"`
}

// MaterialBalance sums standard piece values per side. Balance is white minus
// black.
type MaterialBalance struct {
	White   int `json:"white"`
	Black   int `json:"black"`
	Balance int `json:"balance"`
}

type SideCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// KingSafety describes one king. Castled is a proxy flag set once the side has
// consumed all of its castling rights. PawnShield counts friendly pawns on the
// three squares directly ahead of the king.
type KingSafety struct {
	Attackers  int  `json:"attackers"`
	InCheck    bool `json:"in_check"`
	Castled    bool `json:"castled"`
	PawnShield int  `json:"pawn_shield"`
}

type KingSafetyPair struct {
	White KingSafety `json:"white"`
	Black KingSafety `json:"black"`
}

// PawnIssues lists problem files by letter: files holding more than one
// friendly pawn, and files whose pawns have no friendly pawn on an adjacent
// file.
type PawnIssues struct {
	DoubledFiles  []string `json:"doubled_files,omitempty"`
	IsolatedFiles []string `json:"isolated_files,omitempty"`
}

type PawnIssuesPair struct {
	White PawnIssues `json:"white"`
	Black PawnIssues `json:"black"`
}

// Motif types reported in HeuristicReport.Tactics.
const (
	MotifCheck   = "check"
	MotifHanging = "hanging"
)

// Motif is a detected tactical element. Square is in algebraic form ("e5");
// Piece uses FEN letters (uppercase white, lowercase black) and is empty for
// the check motif.
type Motif struct {
	Type   string `json:"type"`
	Square string `json:"square"`
	Piece  string `json:"piece,omitempty"`
}

// DevelopmentPair lists the minor pieces still on their home squares per side,
// labelled like "Nb1" or "Bf8".
type DevelopmentPair struct {
	White []string `json:"white,omitempty"`
	Black []string `json:"black,omitempty"`
}
