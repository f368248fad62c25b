package heuristics

import (
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-coach-core/pkg/coachdto"
)

func positionFromFEN(t *testing.T, fen string) *nchess.Position {
	t.Helper()
	option, err := nchess.FEN(fen)
	if err != nil {
		t.Fatalf("bad FEN %q: %v", fen, err)
	}
	return nchess.NewGame(option).Position()
}

func TestExtractInitialPosition(t *testing.T) {
	report := Extract(positionFromFEN(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"))

	if report.Material.White != 39 || report.Material.Black != 39 || report.Material.Balance != 0 {
		t.Fatalf("material = %+v, want 39/39/0", report.Material)
	}
	// No piece reaches the four central squares before the first move.
	if report.CenterControl.White != 0 || report.CenterControl.Black != 0 {
		t.Fatalf("center control = %+v, want 0/0", report.CenterControl)
	}
	if report.Activity.White == 0 || report.Activity.White != report.Activity.Black {
		t.Fatalf("activity = %+v, want equal non-zero counts", report.Activity)
	}
	if len(report.Development.White) != 4 || len(report.Development.Black) != 4 {
		t.Fatalf("development = %+v, want 4 undeveloped minors per side", report.Development)
	}
	if report.KingSafety.White.PawnShield != 3 || report.KingSafety.Black.PawnShield != 3 {
		t.Fatalf("pawn shield = %+v, want 3 per side", report.KingSafety)
	}
	if report.KingSafety.White.Castled || report.KingSafety.Black.Castled {
		t.Fatalf("castled flags set at the initial position: %+v", report.KingSafety)
	}
	if report.KingSafety.White.InCheck || report.KingSafety.Black.InCheck {
		t.Fatalf("check flags set at the initial position: %+v", report.KingSafety)
	}
	if len(report.Tactics) != 0 {
		t.Fatalf("motifs at the initial position: %+v", report.Tactics)
	}
	if len(report.PawnStructure.White.DoubledFiles) != 0 || len(report.PawnStructure.White.IsolatedFiles) != 0 {
		t.Fatalf("pawn issues at the initial position: %+v", report.PawnStructure)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	const fen = "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	first := Extract(positionFromFEN(t, fen))
	second := Extract(positionFromFEN(t, fen))
	if first.Material != second.Material ||
		first.CenterControl != second.CenterControl ||
		first.Activity != second.Activity ||
		first.KingSafety != second.KingSafety ||
		len(first.Tactics) != len(second.Tactics) {
		t.Fatalf("reports differ for identical input:\n%+v\n%+v", first, second)
	}
}

func TestCenterControlAfterKingPawnAdvance(t *testing.T) {
	report := Extract(positionFromFEN(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"))
	// The e4 pawn attacks d5; nothing black reaches the center yet.
	if report.CenterControl.White != 1 || report.CenterControl.Black != 0 {
		t.Fatalf("center control = %+v, want 1/0", report.CenterControl)
	}
	if report.Material.Balance != 0 {
		t.Fatalf("material balance = %d, want 0", report.Material.Balance)
	}
}

func TestHangingPieceDetected(t *testing.T) {
	// Undefended white knight on e5 attacked by the d6 pawn.
	report := Extract(positionFromFEN(t, "k7/8/3p4/4N3/8/8/8/K7 w - - 0 1"))
	if len(report.Tactics) != 1 {
		t.Fatalf("motifs = %+v, want exactly one", report.Tactics)
	}
	motif := report.Tactics[0]
	if motif.Type != coachdto.MotifHanging || motif.Square != "e5" || motif.Piece != "N" {
		t.Fatalf("motif = %+v, want hanging N on e5", motif)
	}
}

func TestDefendedPieceNotHanging(t *testing.T) {
	// Same knight, now defended by the d4 pawn.
	report := Extract(positionFromFEN(t, "k7/8/3p4/4N3/3P4/8/8/K7 w - - 0 1"))
	if len(report.Tactics) != 0 {
		t.Fatalf("motifs = %+v, want none", report.Tactics)
	}
}

func TestCheckMotifForSideToMove(t *testing.T) {
	report := Extract(positionFromFEN(t, "k7/8/8/8/8/2q5/8/K7 w - - 0 1"))
	if len(report.Tactics) != 1 {
		t.Fatalf("motifs = %+v, want exactly one", report.Tactics)
	}
	motif := report.Tactics[0]
	if motif.Type != coachdto.MotifCheck || motif.Square != "a1" {
		t.Fatalf("motif = %+v, want check on a1", motif)
	}
	if !report.KingSafety.White.InCheck {
		t.Fatalf("white in-check flag not set: %+v", report.KingSafety.White)
	}
	if report.KingSafety.Black.InCheck {
		t.Fatalf("black in-check flag set: %+v", report.KingSafety.Black)
	}
	if report.KingSafety.White.Attackers == 0 {
		t.Fatalf("white king attacker count = 0")
	}
}

func TestDoubledAndIsolatedPawns(t *testing.T) {
	report := Extract(positionFromFEN(t, "k7/8/8/8/8/P7/P7/K7 w - - 0 1"))
	white := report.PawnStructure.White
	if len(white.DoubledFiles) != 1 || white.DoubledFiles[0] != "a" {
		t.Fatalf("doubled files = %v, want [a]", white.DoubledFiles)
	}
	if len(white.IsolatedFiles) != 1 || white.IsolatedFiles[0] != "a" {
		t.Fatalf("isolated files = %v, want [a]", white.IsolatedFiles)
	}
	if len(report.PawnStructure.Black.DoubledFiles) != 0 {
		t.Fatalf("black doubled files = %v, want none", report.PawnStructure.Black.DoubledFiles)
	}
}

func TestConnectedPawnsNotIsolated(t *testing.T) {
	report := Extract(positionFromFEN(t, "k7/8/8/8/8/8/PP6/K7 w - - 0 1"))
	white := report.PawnStructure.White
	if len(white.IsolatedFiles) != 0 {
		t.Fatalf("isolated files = %v, want none", white.IsolatedFiles)
	}
	if len(white.DoubledFiles) != 0 {
		t.Fatalf("doubled files = %v, want none", white.DoubledFiles)
	}
}

func TestDevelopmentTracksMovedMinors(t *testing.T) {
	// After 1.Nf3 the g1 knight has left its home square.
	report := Extract(positionFromFEN(t, "rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b KQkq - 1 1"))
	if len(report.Development.White) != 3 {
		t.Fatalf("white undeveloped = %v, want 3 entries", report.Development.White)
	}
	for _, label := range report.Development.White {
		if label == "Ng1" {
			t.Fatalf("Ng1 still reported undeveloped: %v", report.Development.White)
		}
	}
	if len(report.Development.Black) != 4 {
		t.Fatalf("black undeveloped = %v, want 4 entries", report.Development.Black)
	}
}

func TestDevelopmentIgnoresForeignOccupant(t *testing.T) {
	// A black rook parked on g1 does not count as an undeveloped white minor.
	report := Extract(positionFromFEN(t, "k7/8/8/8/8/8/8/K5r1 w - - 0 1"))
	if len(report.Development.White) != 0 {
		t.Fatalf("white undeveloped = %v, want none", report.Development.White)
	}
}

func TestCastledFlagWhenRightsConsumed(t *testing.T) {
	report := Extract(positionFromFEN(t, "k7/8/8/8/8/8/8/K7 w - - 0 1"))
	if !report.KingSafety.White.Castled || !report.KingSafety.Black.Castled {
		t.Fatalf("castled flags = %+v, want both set when no rights remain", report.KingSafety)
	}
}

func TestMaterialImbalance(t *testing.T) {
	report := Extract(positionFromFEN(t, "k7/8/8/8/8/8/P7/K7 w - - 0 1"))
	if report.Material.White != 1 || report.Material.Black != 0 || report.Material.Balance != 1 {
		t.Fatalf("material = %+v, want 1/0/+1", report.Material)
	}
}
