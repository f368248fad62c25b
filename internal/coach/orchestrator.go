// Package coach composes the board, the analysis engine, and the heuristic
// extractor into one session facade producing the structured fact payloads
// consumed by the reasoning layer. It makes no judgment about whether a move
// is good or bad; that interpretation belongs downstream.
package coach

import (
	"context"
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/chess-coach-core/internal/board"
	"github.com/park285/chess-coach-core/internal/engine"
	"github.com/park285/chess-coach-core/internal/heuristics"
	"github.com/park285/chess-coach-core/pkg/coachdto"
)

// Evaluator is the analysis surface the orchestrator needs from the engine
// client. Narrowed to an interface so tests can stub the engine.
type Evaluator interface {
	Analyze(ctx context.Context, fen string, topN int, budget time.Duration) ([]engine.Evaluation, error)
	EvaluateSingle(ctx context.Context, fen string, budget time.Duration) (engine.Evaluation, error)
}

type Config struct {
	TopMoves int
	Budget   time.Duration
	PVLimit  int
}

const (
	defaultTopMoves = 3
	defaultBudget   = 8 * time.Second
	defaultPVLimit  = 5
)

// Service owns one coaching session: its board, its engine client, and a
// session id stamped into every fact payload. Not safe for concurrent use;
// concurrent sessions get independent Service instances.
type Service struct {
	sessionID string
	board     *board.Board
	engine    Evaluator
	cfg       Config
	logger    *zap.Logger
}

func NewService(evaluator Evaluator, cfg Config, logger *zap.Logger) *Service {
	if cfg.TopMoves <= 0 {
		cfg.TopMoves = defaultTopMoves
	}
	if cfg.Budget <= 0 {
		cfg.Budget = defaultBudget
	}
	if cfg.PVLimit <= 0 {
		cfg.PVLimit = defaultPVLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessionID: uuid.NewString(),
		board:     board.New(),
		engine:    evaluator,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *Service) SessionID() string { return s.sessionID }

// LoadPosition replaces the session position and clears the move history.
func (s *Service) LoadPosition(fen string) error {
	if err := s.board.Load(fen); err != nil {
		return err
	}
	s.logger.Info("position loaded",
		zap.String("session", s.sessionID),
		zap.String("fen", s.board.FEN()))
	return nil
}

// PlayMove advances the session position and returns the SAN label of the
// played move.
func (s *Service) PlayMove(text string) (string, error) {
	mv, err := s.board.ParseMove(text)
	if err != nil {
		return "", err
	}
	pos := s.board.Position()
	label := (nchess.AlgebraicNotation{}).Encode(pos, mv)
	if err := s.board.Apply(mv); err != nil {
		return "", err
	}
	return label, nil
}

// UndoMove reverts the latest played move and returns its SAN label.
func (s *Service) UndoMove() (string, error) {
	return s.board.Undo()
}

// LegalMoves lists every legal move of the current position in SAN.
func (s *Service) LegalMoves() []string {
	return s.board.LegalSAN()
}

func (s *Service) FEN() string        { return s.board.FEN() }
func (s *Service) SideToMove() string { return s.board.SideToMove() }

// AnalyzePosition collects the engine's top lines and the heuristic report
// for the current position.
func (s *Service) AnalyzePosition(ctx context.Context) (coachdto.PositionFacts, error) {
	pos := s.board.Position()
	evals, err := s.engine.Analyze(ctx, s.board.FEN(), s.cfg.TopMoves, s.cfg.Budget)
	if err != nil {
		return coachdto.PositionFacts{}, err
	}
	return coachdto.PositionFacts{
		SessionID:  s.sessionID,
		FEN:        s.board.FEN(),
		SideToMove: s.board.SideToMove(),
		TopMoves:   s.lines(pos, evals),
		Heuristics: heuristics.Extract(pos),
	}, nil
}

// CompareMove evaluates a candidate move against the engine's best line.
//
// Sign convention: every score is expressed from the perspective of the side
// to move in the pre-move position. The engine reports score-for-mover, so
// the evaluation of the position after the candidate (where the opponent
// moves) is negated before comparison. DeltaCP = best − candidate: positive
// means the candidate is worse than the engine's best by that many
// centipawns. A candidate identical to the best move reuses the best line's
// evaluation, making its delta exactly 0.
//
// The session position and history are never mutated: the post-move position
// is derived on a scratch copy.
func (s *Service) CompareMove(ctx context.Context, candidate string) (coachdto.MoveComparison, error) {
	mv, err := s.board.ParseMove(candidate)
	if err != nil {
		return coachdto.MoveComparison{}, err
	}

	pos := s.board.Position()
	fen := s.board.FEN()
	candidateSAN := (nchess.AlgebraicNotation{}).Encode(pos, mv)
	candidateUCI := strings.ToLower((nchess.UCINotation{}).Encode(pos, mv))

	evals, err := s.engine.Analyze(ctx, fen, s.cfg.TopMoves, s.cfg.Budget)
	if err != nil {
		return coachdto.MoveComparison{}, err
	}
	best := evals[0]

	after := pos.Update(mv)
	if after == nil {
		return coachdto.MoveComparison{}, fmt.Errorf("coach: derive position after %s", candidateSAN)
	}

	candidateLine := coachdto.EngineLine{MoveUCI: candidateUCI, MoveSAN: candidateSAN}
	delta := 0
	if candidateUCI == strings.ToLower(best.MoveUCI) {
		candidateLine.ScoreCP = best.ScoreCP
		candidateLine.Mate = best.Mate
		candidateLine.Principal = s.pvSAN(pos, best.Principal)
	} else {
		afterEval, err := s.engine.EvaluateSingle(ctx, after.String(), s.cfg.Budget)
		if err != nil {
			return coachdto.MoveComparison{}, err
		}
		candidateLine.ScoreCP = -afterEval.ScoreCP
		candidateLine.Mate = -afterEval.Mate
		pv := append([]string{candidateSAN}, s.pvSAN(after, afterEval.Principal)...)
		if len(pv) > s.cfg.PVLimit {
			pv = pv[:s.cfg.PVLimit]
		}
		candidateLine.Principal = pv
		delta = best.ScoreCP - candidateLine.ScoreCP
	}

	result := coachdto.MoveComparison{
		SessionID:        s.sessionID,
		FEN:              fen,
		SideToMove:       s.board.SideToMove(),
		BestMove:         s.line(pos, best),
		CandidateMove:    candidateLine,
		DeltaCP:          delta,
		TopMoves:         s.lines(pos, evals),
		HeuristicsBefore: heuristics.Extract(pos),
		HeuristicsAfter:  heuristics.Extract(after),
	}
	s.logger.Info("move compared",
		zap.String("session", s.sessionID),
		zap.String("candidate", candidateSAN),
		zap.String("best", result.BestMove.MoveSAN),
		zap.Int("delta_cp", delta))
	return result, nil
}

func (s *Service) lines(pos *nchess.Position, evals []engine.Evaluation) []coachdto.EngineLine {
	out := make([]coachdto.EngineLine, 0, len(evals))
	for _, ev := range evals {
		out = append(out, s.line(pos, ev))
	}
	return out
}

func (s *Service) line(pos *nchess.Position, ev engine.Evaluation) coachdto.EngineLine {
	line := coachdto.EngineLine{
		MoveUCI:   strings.ToLower(ev.MoveUCI),
		MoveSAN:   ev.MoveUCI,
		ScoreCP:   ev.ScoreCP,
		Mate:      ev.Mate,
		Principal: s.pvSAN(pos, ev.Principal),
	}
	if mv, err := (nchess.UCINotation{}).Decode(pos, strings.ToLower(ev.MoveUCI)); err == nil {
		line.MoveSAN = (nchess.AlgebraicNotation{}).Encode(pos, mv)
	}
	return line
}

// pvSAN re-labels a UCI principal variation in SAN by walking it on scratch
// positions, stopping at the PV limit or the first move that fails to decode.
func (s *Service) pvSAN(pos *nchess.Position, pv []string) []string {
	notationUCI := nchess.UCINotation{}
	notationSAN := nchess.AlgebraicNotation{}
	out := make([]string, 0, min(len(pv), s.cfg.PVLimit))
	current := pos
	for _, uci := range pv {
		if len(out) == s.cfg.PVLimit {
			break
		}
		mv, err := notationUCI.Decode(current, strings.ToLower(uci))
		if err != nil {
			break
		}
		out = append(out, notationSAN.Encode(current, mv))
		next := current.Update(mv)
		if next == nil {
			break
		}
		current = next
	}
	return out
}
