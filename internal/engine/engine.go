package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/hailam/chester/internal/board"
	"github.com/hailam/chester/internal/game"
)

// ErrNoLegalMoves is returned when the side asked to move has no legal
// move, i.e. the game is already over.
var ErrNoLegalMoves = errors.New("no legal moves")

// Chooser picks a move for color on b. Implementations may mutate b while
// choosing but must leave it as they found it.
type Chooser interface {
	ChooseMove(b *board.Board, color board.Color) (board.Move, error)
}

// Config holds the engine parameters.
type Config struct {
	// Depth is the default search depth. Depth 0 looks one ply ahead.
	Depth int

	// StateProbeCutoff enables checkmate and stalemate detection at the
	// last search frame when both sides have at most this many pieces.
	// A negative value disables the probe.
	StateProbeCutoff int

	// StalematePenalty is the score of being stalemated.
	StalematePenalty int

	// Workers is the number of goroutines scoring root moves.
	Workers int

	// CacheEntries bounds the score cache. Zero disables it.
	CacheEntries int

	Logger logr.Logger
}

// DefaultConfig returns the default engine parameters.
func DefaultConfig() Config {
	return Config{
		Depth:            3,
		StateProbeCutoff: 12,
		StalematePenalty: -5,
		Workers:          1,
		CacheEntries:     1 << 20,
		Logger:           logr.Discard(),
	}
}

// Limits specifies constraints on a single search.
type Limits struct {
	Depth    int           // Maximum depth (0 = engine default)
	Plies    int           // Plies to look ahead, Depth+1; overrides Depth when > 0
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Deepen until stopped, up to MaxDepth
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]Limits{
	Easy:   {Depth: 1, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 2, MoveTime: 2 * time.Second},
	Hard:   {Depth: 3, MoveTime: 5 * time.Second},
}

// ParseDifficulty converts "easy", "medium" or "hard" to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "easy", "Easy":
		return Easy, nil
	case "medium", "Medium":
		return Medium, nil
	case "hard", "Hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// Result is the outcome of a search, or of one completed iteration of it.
type Result struct {
	Move      board.Move
	Score     int
	Depth     int
	Nodes     uint64
	CacheHits uint64
	Time      time.Duration
	Ranked    []ScoredMove // root moves, best first
}

// Engine is the negamax chooser. It searches with iterative deepening so
// that a deadline or Stop still yields the move of the deepest completed
// iteration.
//
// Search and ChooseMove must not be called concurrently on one Engine;
// Stop may be called from any goroutine.
type Engine struct {
	cfg      Config
	searcher *Searcher
	tt       *TranspositionTable
	log      logr.Logger

	// OnInfo is called after every completed iteration.
	OnInfo func(Result)
}

// New creates an engine. Zero Depth, Workers and a zero Logger fall back
// to the defaults.
func New(cfg Config) (*Engine, error) {
	if cfg.Depth < 0 {
		return nil, fmt.Errorf("engine depth %d is negative", cfg.Depth)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger.GetSink() == nil {
		cfg.Logger = logr.Discard()
	}

	tt, err := NewTranspositionTable(cfg.CacheEntries)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		searcher: NewSearcher(cfg, tt),
		tt:       tt,
		log:      cfg.Logger.WithName("engine"),
	}, nil
}

// Config returns the engine parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// ChooseMove searches b to the configured depth and returns the best move
// for color.
func (e *Engine) ChooseMove(b *board.Board, color board.Color) (board.Move, error) {
	res, err := e.Search(context.Background(), b, color, Limits{})
	return res.Move, err
}

// Search finds the best move for color on b. The board is mutated during
// the search and restored before Search returns.
//
// Iterations run from depth 0 up to the limit. Depth 0 always completes;
// deeper iterations are abandoned when ctx is done, MoveTime elapses or
// Stop is called, and the last completed iteration is returned.
func (e *Engine) Search(ctx context.Context, b *board.Board, color board.Color, limits Limits) (Result, error) {
	e.searcher.Reset()
	startTime := time.Now()
	startHits := e.tt.Hits()

	if !b.HasLegalMoves(color) {
		st := game.StateOf(b, color)
		return Result{Move: board.NoMove, Score: e.searcher.terminal(b, color)},
			fmt.Errorf("%w: %v to move, game is %v", ErrNoLegalMoves, color, st)
	}

	maxDepth := e.cfg.Depth
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}
	if limits.Plies > 0 {
		maxDepth = limits.Plies - 1
	}
	if limits.Infinite {
		maxDepth = MaxDepth
	}

	if limits.MoveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.MoveTime)
		defer cancel()
	}
	// A cancellation callback still running when Search returns must not
	// reach the next search's Reset, so wait for it.
	stopped := make(chan struct{})
	unregister := context.AfterFunc(ctx, func() {
		defer close(stopped)
		e.searcher.Stop()
	})
	defer func() {
		if !unregister() {
			<-stopped
		}
	}()

	e.log.V(2).Info("search started", "color", color, "maxDepth", maxDepth, "moveTime", limits.MoveTime, "workers", e.cfg.Workers)

	var best Result
	for depth := 0; depth <= maxDepth; depth++ {
		if depth > 0 && ctx.Err() != nil {
			break
		}
		ranked, score, err := e.searcher.SearchRoot(b, color, depth, depth > 0)
		if errors.Is(err, errStopped) {
			e.log.V(2).Info("search stopped", "depth", depth)
			break
		}
		if err != nil {
			return best, err
		}

		best = Result{
			Move:      ranked[0].Move,
			Score:     score,
			Depth:     depth,
			Nodes:     e.searcher.Nodes(),
			CacheHits: e.tt.Hits() - startHits,
			Time:      time.Since(startTime),
			Ranked:    ranked,
		}
		e.log.V(1).Info("depth complete", "depth", depth, "move", best.Move, "score", best.Score, "nodes", best.Nodes, "time", best.Time)
		if e.OnInfo != nil {
			e.OnInfo(best)
		}
	}

	e.log.V(2).Info("search finished", "move", best.Move, "depth", best.Depth, "nodes", best.Nodes, "cacheHitRate", e.tt.HitRate())
	return best, nil
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear clears the score cache.
func (e *Engine) Clear() {
	e.tt.Clear()
}

// Flush blocks until pending score cache writes are visible.
func (e *Engine) Flush() {
	e.tt.Wait()
}

// Close releases the score cache.
func (e *Engine) Close() {
	e.tt.Close()
}

// Perft counts the leaf nodes of the legal move tree of the given depth
// (for debugging move generation).
func Perft(b *board.Board, color board.Color, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := b.LegalMoves(color)
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		mover, captured := b.Get(m.From), b.Get(m.To)
		b.Move(m.From, m.To)
		nodes += Perft(b, color.Other(), depth-1)
		b.Put(m.From, mover)
		b.Put(m.To, captured)
	}
	return nodes
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	switch {
	case score >= MateScore:
		return "mate"
	case score <= -MateScore:
		return "mated"
	}
	return fmt.Sprintf("%+d", score)
}
