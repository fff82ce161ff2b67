package engine

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync/atomic"

	"github.com/hailam/chester/internal/board"
	"github.com/hailam/chester/internal/game"
)

// Search constants
const (
	// MateScore is the score of a won position. A checkmated side scores
	// -MateScore from its own perspective.
	MateScore = math.MaxInt32

	// MaxDepth caps iterative deepening for unbounded searches.
	MaxDepth = 32
)

// ScoredMove is a root move with its negamax score from the mover's side.
type ScoredMove struct {
	Move  board.Move
	Score int
}

// Searcher runs depth-bounded negamax over the legal moves of a board,
// scoring positions by material.
//
// Each frame applies a candidate move in place, scores the resulting
// position and restores the two touched cells. At the last frame (depth 0)
// the score is the material balance for the side that moved; above it the
// score is the negated best reply of the other side one frame down. A side
// without legal moves scores -MateScore when checkmated and the stalemate
// penalty when stalemated.
//
// A Searcher may be shared by parallel root workers as long as each works
// on its own board.
type Searcher struct {
	tt               *TranspositionTable
	probeCutoff      int
	stalematePenalty int
	workers          int

	stopFlag      atomic.Bool
	interruptible atomic.Bool
	nodes         atomic.Uint64
}

// NewSearcher creates a searcher that caches scores in tt, which may be nil.
func NewSearcher(cfg Config, tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:               tt,
		probeCutoff:      cfg.StateProbeCutoff,
		stalematePenalty: cfg.StalematePenalty,
		workers:          max(cfg.Workers, 1),
	}
}

// Stop signals an interruptible search to stop before its next sibling.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears the stop signal and the node counter.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes.Store(0)
}

// Nodes returns the number of moves applied since the last Reset.
func (s *Searcher) Nodes() uint64 {
	return s.nodes.Load()
}

// stopped reports whether the current search was interrupted.
func (s *Searcher) stopped() bool {
	return s.interruptible.Load() && s.stopFlag.Load()
}

// errStopped is returned by SearchRoot when the search was interrupted and
// its scores are incomplete.
var errStopped = errors.New("search stopped")

// SearchRoot scores every legal move of color at the given depth and
// returns them ordered best first. Equal scores keep enumeration order:
// ascending origin cell, then generation order. With no legal moves the
// slice is empty and the terminal score of the position is returned.
//
// If interruptible is set and Stop is called before the search finishes,
// errStopped is returned and the scores must be discarded.
func (s *Searcher) SearchRoot(b *board.Board, color board.Color, depth int, interruptible bool) ([]ScoredMove, int, error) {
	s.interruptible.Store(interruptible)
	defer s.interruptible.Store(false)

	moves := b.LegalMoves(color)
	if len(moves) == 0 {
		return nil, s.terminal(b, color), nil
	}

	scores, err := s.scoreRoot(b, color, moves, depth)
	if err != nil {
		return nil, 0, err
	}
	if s.stopped() {
		return nil, 0, errStopped
	}

	ranked := make([]ScoredMove, len(moves))
	for i, m := range moves {
		ranked[i] = ScoredMove{Move: m, Score: scores[i]}
	}
	slices.SortStableFunc(ranked, func(a, b ScoredMove) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return ranked, ranked[0].Score, nil
}

// value returns the best score color can reach on b with depth frames
// left, from color's perspective.
func (s *Searcher) value(b *board.Board, color board.Color, depth int) int {
	key := Key(b, color, depth)
	if score, ok := s.tt.Probe(key); ok {
		return score
	}

	best := math.MinInt
	found := false
	var buf [maxFrameMoves]board.Move
	for _, m := range appendLegalMoves(b, color, buf[:0]) {
		if s.stopped() {
			return 0
		}
		found = true
		if score := s.scoreMove(b, color, m, depth); score > best {
			best = score
		}
	}
	if !found {
		best = s.terminal(b, color)
	}

	if !s.stopped() {
		s.tt.Store(key, best)
	}
	return best
}

// scoreMove applies m for color, scores the result from color's side and
// restores the board.
func (s *Searcher) scoreMove(b *board.Board, color board.Color, m board.Move, depth int) int {
	mover, captured := b.Get(m.From), b.Get(m.To)
	b.Move(m.From, m.To)
	s.nodes.Add(1)

	var score int
	if depth == 0 {
		score = s.leaf(b, color)
	} else {
		score = -s.value(b, color.Other(), depth-1)
	}

	b.Put(m.From, mover)
	b.Put(m.To, captured)
	return score
}

// leaf scores the position after color's last move by material. When both
// sides are down to probeCutoff pieces or fewer, it also checks whether the
// reply side is checkmated or stalemated. This is a cost heuristic: above
// the cutoff a terminal leaf is scored as if play continued.
func (s *Searcher) leaf(b *board.Board, color board.Color) int {
	if s.probeCutoff >= 0 && b.Count(board.White) <= s.probeCutoff && b.Count(board.Black) <= s.probeCutoff {
		if !b.HasLegalMoves(color.Other()) {
			return -s.terminal(b, color.Other())
		}
	}
	return Evaluate(b, color)
}

// terminal scores a position in which color has no legal moves, from
// color's perspective.
func (s *Searcher) terminal(b *board.Board, color board.Color) int {
	switch st := game.StateOf(b, color); st {
	case game.Stalemate:
		return s.stalematePenalty
	case game.WhiteWins, game.BlackWins:
		if winner, _ := st.Winner(); winner == color {
			panic(fmt.Sprintf("engine: %v has no moves but is reported as winner", color))
		}
		return -MateScore
	default:
		panic(fmt.Sprintf("engine: %v has no legal moves but the game is %v", color, st))
	}
}

// maxFrameMoves sizes the per-frame move buffer. Positions reachable by
// these rules stay well below it; larger move lists spill to the heap.
const maxFrameMoves = 128

// appendLegalMoves appends every legal move of color to dst, in the same
// order as Board.LegalMoves.
func appendLegalMoves(b *board.Board, color board.Color, dst []board.Move) []board.Move {
	for c := board.A1; c < board.NoCell; c++ {
		p := b.Get(c)
		if p.IsNone() || p.Color() != color {
			continue
		}
		for _, to := range b.Moves(c) {
			dst = append(dst, board.NewMove(c, to))
		}
	}
	return dst
}
