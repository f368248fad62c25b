// Package engine owns the external analysis process and exposes bounded,
// typed evaluation calls on top of the UCI session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-coach-core/internal/engine/uci"
)

// Error taxonomy for the analysis engine. Timeouts are expected operational
// conditions: the process survives them and a later call may succeed.
// Unavailability at startup is final for the client instance; callers recreate
// the client instead of retrying in place.
var (
	ErrEngineUnavailable = errors.New("engine: unavailable")
	ErrEngineTimeout     = errors.New("engine: analysis timed out")
	ErrProtocol          = errors.New("engine: protocol error")
)

// Evaluation is one engine line. ScoreCP is expressed from the perspective of
// the side to move in the analyzed position; forced mates are flattened into
// ScoreCP (±(30000−N)) and additionally reported in Mate as the move distance,
// signed for the mover. A terminal position evaluates to a single line with an
// empty MoveUCI: −30000 when the mover is checkmated, 0 for stalemate.
type Evaluation struct {
	MoveUCI   string
	ScoreCP   int
	Mate      int
	Principal []string
}

type Config struct {
	BinaryPath string
	Preset     AnalysisPreset
	Logger     *zap.Logger
}

// Client wraps exactly one engine process. The process is the client's
// exclusively owned resource: it is spawned by Start, shared with nobody, and
// released on every exit path through Stop. One Client per session; calls are
// not safe for concurrent use.
type Client struct {
	binaryPath string
	preset     AnalysisPreset
	logger     *zap.Logger

	session *uci.Session
	dead    bool
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BinaryPath == "" {
		return nil, fmt.Errorf("%w: binary path required", ErrEngineUnavailable)
	}
	if _, err := os.Stat(cfg.BinaryPath); err != nil {
		return nil, fmt.Errorf("%w: binary check: %v", ErrEngineUnavailable, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	preset := cfg.Preset
	if preset.Name == "" {
		preset = DefaultPreset()
	}
	return &Client{binaryPath: cfg.BinaryPath, preset: preset, logger: logger}, nil
}

// Start spawns the process and performs the handshake. A failed start marks
// the client dead: later Start calls keep failing and the caller must build a
// fresh client.
func (c *Client) Start(ctx context.Context) error {
	if c.session != nil {
		return nil
	}
	if c.dead {
		return fmt.Errorf("%w: client is dead after a failed start, recreate it", ErrEngineUnavailable)
	}
	session, err := uci.NewSession(ctx, c.binaryPath, uci.Options{
		Threads: c.preset.Threads,
		HashMB:  c.preset.HashMB,
		MultiPV: 1,
	})
	if err != nil {
		c.dead = true
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	c.session = session
	c.logger.Info("engine started",
		zap.String("binary", c.binaryPath),
		zap.String("preset", c.preset.Name))
	return nil
}

// Stop terminates the process and releases its handle. Idempotent; safe after
// a failed Start.
func (c *Client) Stop() error {
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	c.logger.Info("engine stopped")
	return err
}

// Analyze returns the topN best lines for the position, ordered best to worst
// by score (ties keep the engine's own order), blocking for at most budget.
// On budget expiry it returns ErrEngineTimeout and leaves the process usable
// for the next call.
func (c *Client) Analyze(ctx context.Context, fen string, topN int, budget time.Duration) ([]Evaluation, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: topN must be > 0: %d", ErrProtocol, topN)
	}
	if budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be > 0: %s", ErrProtocol, budget)
	}
	if c.session == nil {
		return nil, fmt.Errorf("%w: not started", ErrEngineUnavailable)
	}

	if err := c.session.SetMultiPV(ctx, topN); err != nil {
		return nil, c.fail(fmt.Errorf("%w: set multipv: %v", ErrProtocol, err))
	}

	searchCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	started := time.Now()
	resp, err := c.session.Search(searchCtx, uci.SearchRequest{
		FEN: fen,
		Limits: uci.Limits{
			MoveTimeMillis: c.preset.MoveTimeMillis,
			Depth:          c.preset.DepthCap,
		},
	})
	if err != nil {
		if errors.Is(err, uci.ErrNotRecovered) {
			return nil, c.fail(fmt.Errorf("%w: %v", ErrProtocol, err))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("analysis timed out",
				zap.Duration("budget", budget),
				zap.String("fen", fen))
			return nil, fmt.Errorf("%w: budget %s", ErrEngineTimeout, budget)
		}
		return nil, c.fail(fmt.Errorf("%w: %v", ErrProtocol, err))
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: search produced no candidates", ErrProtocol)
	}

	evals := convertCandidates(resp.Candidates, topN, c.preset.PVLimit)
	c.logger.Debug("analysis complete",
		zap.Int("lines", len(evals)),
		zap.Duration("elapsed", time.Since(started)))
	return evals, nil
}

// EvaluateSingle scores a position with a single line; used on the position
// that results after a candidate move.
func (c *Client) EvaluateSingle(ctx context.Context, fen string, budget time.Duration) (Evaluation, error) {
	evals, err := c.Analyze(ctx, fen, 1, budget)
	if err != nil {
		return Evaluation{}, err
	}
	return evals[0], nil
}

// fail releases the process on unrecoverable errors so no handle leaks.
func (c *Client) fail(err error) error {
	if c.session != nil {
		_ = c.session.Close()
		c.session = nil
	}
	c.dead = true
	c.logger.Error("engine failed", zap.Error(err))
	return err
}

func convertCandidates(in []uci.Candidate, topN, pvLimit int) []Evaluation {
	if pvLimit <= 0 {
		pvLimit = defaultPVLimit
	}
	out := make([]Evaluation, 0, len(in))
	for _, cand := range in {
		if len(out) == topN {
			break
		}
		pv := cand.Principal
		if len(pv) > pvLimit {
			pv = pv[:pvLimit]
		}
		out = append(out, Evaluation{
			MoveUCI:   cand.Move,
			ScoreCP:   cand.EvalCP,
			Mate:      cand.Mate,
			Principal: append([]string(nil), pv...),
		})
	}
	return out
}
