// Package uci speaks the line-oriented UCI protocol with a spawned analysis
// process: identification handshake, option setup, position/search commands,
// and parsing of the evaluation stream. Informational lines the parser does
// not recognise are ignored.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultReadyTimeout = 4 * time.Second
	stopDrainTimeout    = 2 * time.Second
)

// MateValue is the centipawn magnitude used to flatten forced-mate scores so
// that lines stay comparable: a mate in N flattens to ±(MateValue − N), which
// keeps nearer mates ordered above farther ones and any mate above any
// centipawn score.
const MateValue = 30000

// ErrNotRecovered reports that the engine ignored a stop request after a
// timed-out search. The process can no longer be trusted and must be closed.
var ErrNotRecovered = errors.New("uci: engine did not acknowledge stop")

type Options struct {
	Threads int
	HashMB  int
	MultiPV int
}

type Limits struct {
	MoveTimeMillis int
	Depth          int
}

// Candidate is one multipv line. EvalCP is relative to the side to move in the
// searched position; Mate carries the forced-mate distance (sign follows the
// mover) and is 0 when no mate was reported. A terminal position (checkmate or
// stalemate) yields a single candidate with an empty Move and Principal.
type Candidate struct {
	Move      string
	EvalCP    int
	Mate      int
	Principal []string
}

type SearchRequest struct {
	FEN    string
	Limits Limits
}

type SearchResponse struct {
	Candidates []Candidate
	BestMove   string
}

// Session owns the pipes of one engine process. Callers serialise searches
// themselves; a Session never runs two searches at once.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu     sync.Mutex
	closed bool

	readerOnce sync.Once
	lines      chan readResult
}

type readResult struct {
	line string
	err  error
}

// NewSession spawns the engine binary, performs the uci/isready handshake and
// applies opt. The process is killed again if any handshake step fails.
func NewSession(ctx context.Context, binaryPath string, opt Options) (*Session, error) {
	if err := validateOptions(opt); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, binaryPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdoutPipe.Close()
		return nil, fmt.Errorf("start engine: %w", err)
	}

	s := &Session{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdoutPipe),
	}

	if err := s.initialize(ctx, opt); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// newSessionFromIO builds a session over arbitrary pipes. Used by tests to
// script the engine side without spawning a process.
func newSessionFromIO(stdin io.WriteCloser, stdout io.Reader) *Session {
	return &Session{stdin: stdin, stdout: bufio.NewReader(stdout)}
}

func validateOptions(opt Options) error {
	if opt.HashMB <= 0 {
		return fmt.Errorf("hash size must be > 0: %d", opt.HashMB)
	}
	if opt.MultiPV <= 0 {
		return fmt.Errorf("multipv must be > 0: %d", opt.MultiPV)
	}
	return nil
}

// Search runs one bounded search. The caller bounds it through ctx; on ctx
// expiry the session sends "stop" and drains the stream to the terminating
// bestmove so the process stays usable, then returns the ctx error. When the
// drain itself fails the returned error also matches ErrNotRecovered.
func (s *Session) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if err := s.send(buildPositionCommand(req.FEN)); err != nil {
		return SearchResponse{}, fmt.Errorf("send position: %w", err)
	}

	goTokens, err := buildGoTokens(req.Limits)
	if err != nil {
		return SearchResponse{}, err
	}
	if err := s.send(strings.Join(goTokens, " ") + "\n"); err != nil {
		return SearchResponse{}, fmt.Errorf("send go: %w", err)
	}

	candidates := make(map[int]Candidate)
	var terminal *Candidate
	for {
		line, err := s.readLine(ctx)
		if err != nil {
			if ctx.Err() != nil {
				if drainErr := s.interrupt(); drainErr != nil {
					return SearchResponse{}, fmt.Errorf("search interrupted: %w: %w", ctx.Err(), drainErr)
				}
				return SearchResponse{}, fmt.Errorf("search interrupted: %w", ctx.Err())
			}
			return SearchResponse{}, fmt.Errorf("read line: %w", err)
		}
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "info "):
			if slot, cand, ok := parseInfo(line); ok {
				if cand.Move == "" {
					c := cand
					terminal = &c
				} else {
					candidates[slot] = cand
				}
			}
		case strings.HasPrefix(line, "bestmove"):
			best := ""
			if parts := strings.Fields(line); len(parts) >= 2 {
				best = parts[1]
			}
			cands := collapseCandidates(candidates)
			if len(cands) == 0 && terminal != nil && (best == "" || best == "(none)") {
				// Checkmate or stalemate: there is no move to suggest, but the
				// position still has a score.
				cands = []Candidate{*terminal}
				best = ""
			}
			return SearchResponse{Candidates: cands, BestMove: best}, nil
		}
	}
}

// interrupt asks the engine to abandon the current search and consumes output
// up to the terminating bestmove.
func (s *Session) interrupt() error {
	if err := s.send("stop\n"); err != nil {
		return fmt.Errorf("%w: send stop: %w", ErrNotRecovered, err)
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), stopDrainTimeout)
	defer cancel()
	for {
		line, err := s.readLine(drainCtx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNotRecovered, err)
		}
		if strings.HasPrefix(line, "bestmove") {
			return nil
		}
	}
}

// SetMultiPV changes the number of lines the engine reports between searches.
func (s *Session) SetMultiPV(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("multipv must be > 0: %d", n)
	}
	if err := s.send(fmt.Sprintf("setoption name MultiPV value %d\n", n)); err != nil {
		return fmt.Errorf("set multipv: %w", err)
	}
	return s.EnsureReady(ctx)
}

func (s *Session) EnsureReady(ctx context.Context) error {
	readyCtx, cancel := context.WithTimeout(ctx, defaultReadyTimeout)
	defer cancel()

	if err := s.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := s.awaitToken(readyCtx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

// Close releases the process handle. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.stdin != nil {
		s.stdin.Close()
	}

	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}

	if s.cmd != nil {
		return s.cmd.Wait()
	}
	return nil
}

func (s *Session) initialize(ctx context.Context, opt Options) error {
	initCtx, cancel := context.WithTimeout(ctx, defaultReadyTimeout)
	defer cancel()

	if err := s.send("uci\n"); err != nil {
		return fmt.Errorf("send uci: %w", err)
	}
	if err := s.awaitToken(initCtx, "uciok"); err != nil {
		return fmt.Errorf("wait uciok: %w", err)
	}

	if err := s.applyOptions(opt); err != nil {
		return err
	}

	if err := s.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := s.awaitToken(initCtx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

func (s *Session) applyOptions(opt Options) error {
	threadCount := opt.Threads
	if threadCount <= 0 {
		threadCount = 1
	}
	cmds := []string{
		fmt.Sprintf("setoption name Threads value %d\n", threadCount),
		fmt.Sprintf("setoption name Hash value %d\n", opt.HashMB),
		fmt.Sprintf("setoption name MultiPV value %d\n", opt.MultiPV),
	}
	for _, cmd := range cmds {
		if err := s.send(cmd); err != nil {
			return fmt.Errorf("apply options: %w", err)
		}
	}
	return nil
}

func (s *Session) send(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("session closed")
	}
	_, err := io.WriteString(s.stdin, msg)
	return err
}

func (s *Session) awaitToken(ctx context.Context, token string) error {
	for {
		line, err := s.readLine(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(line, token) {
			return nil
		}
	}
}

// readLine waits for the next engine line. A single long-lived goroutine feeds
// the channel so that a line arriving after a caller gave up is delivered to
// the next caller instead of being lost.
func (s *Session) readLine(ctx context.Context) (string, error) {
	s.readerOnce.Do(func() {
		s.lines = make(chan readResult, 1)
		go func() {
			for {
				line, err := s.stdout.ReadString('\n')
				s.lines <- readResult{line: strings.TrimSpace(line), err: err}
				if err != nil {
					close(s.lines)
					return
				}
			}
		}()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}

func buildPositionCommand(fen string) string {
	fen = strings.TrimSpace(fen)
	if fen == "" || fen == "startpos" {
		return "position startpos\n"
	}
	return "position fen " + fen + "\n"
}

func buildGoTokens(l Limits) ([]string, error) {
	args := []string{"go"}
	if l.Depth > 0 {
		args = append(args, "depth", strconv.Itoa(l.Depth))
	}
	if l.MoveTimeMillis > 0 {
		args = append(args, "movetime", strconv.Itoa(l.MoveTimeMillis))
	}
	if len(args) == 1 {
		return nil, fmt.Errorf("no search limits specified")
	}
	return args, nil
}

// parseInfo extracts one candidate from an "info" line. The returned slot is
// the multipv index (1 when absent). Lines without a pv are not candidates.
func parseInfo(line string) (int, Candidate, bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return 0, Candidate{}, false
	}
	var (
		slot    = 1
		evalCP  int
		mate    int
		evalSet bool
		pvIdx   = -1
	)

	for i := 0; i < len(parts); i++ {
		switch parts[i] {
		case "multipv":
			if i+1 < len(parts) {
				if v, err := strconv.Atoi(parts[i+1]); err == nil {
					slot = v
				}
				i++
			}
		case "score":
			if i+2 < len(parts) {
				kind := parts[i+1]
				val := parts[i+2]
				switch kind {
				case "cp":
					if v, err := strconv.Atoi(val); err == nil {
						evalCP = v
						evalSet = true
					}
				case "mate":
					if v, err := strconv.Atoi(val); err == nil {
						mate = v
						evalCP = flattenMate(v)
						evalSet = true
					}
				}
				i += 2
			}
		case "pv":
			pvIdx = i + 1
			i = len(parts)
		}
	}

	if pvIdx == -1 || pvIdx >= len(parts) {
		// Terminal positions (checkmate, stalemate) report a bare score with
		// no pv; keep the score so the search can still produce a result.
		if !evalSet {
			return 0, Candidate{}, false
		}
		return slot, Candidate{EvalCP: evalCP, Mate: mate}, true
	}
	principal := parts[pvIdx:]
	if len(principal) == 0 {
		return 0, Candidate{}, false
	}
	if !evalSet {
		evalCP = 0
	}

	cand := Candidate{
		Move:      principal[0],
		EvalCP:    evalCP,
		Mate:      mate,
		Principal: append([]string(nil), principal...),
	}
	return slot, cand, true
}

// flattenMate folds a mate distance into the centipawn scale. Distance 0 means
// the mover is already checkmated, so it flattens to the worst score.
func flattenMate(distance int) int {
	if distance > 0 {
		return MateValue - distance
	}
	return -MateValue - distance
}

// collapseCandidates orders the multipv slots best to worst by score; equal
// scores keep the engine's own slot order.
func collapseCandidates(m map[int]Candidate) []Candidate {
	if len(m) == 0 {
		return nil
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	result := make([]Candidate, 0, len(keys))
	for _, k := range keys {
		result = append(result, m[k])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EvalCP > result[j].EvalCP
	})
	return result
}
