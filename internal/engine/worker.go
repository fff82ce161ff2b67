package engine

import (
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chester/internal/board"
)

// scoreRoot scores each root move and returns the scores in the order of
// moves. With more than one worker the moves are split across goroutines,
// each playing on its own clone of b; the scores are written by index so
// the outcome does not depend on scheduling.
func (s *Searcher) scoreRoot(b *board.Board, color board.Color, moves []board.Move, depth int) ([]int, error) {
	scores := make([]int, len(moves))

	if s.workers <= 1 || len(moves) == 1 {
		for i, m := range moves {
			if s.stopped() {
				break
			}
			scores[i] = s.scoreMove(b, color, m, depth)
		}
		return scores, nil
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, m := range moves {
		g.Go(func() error {
			if s.stopped() {
				return errStopped
			}
			scores[i] = s.scoreMove(b.Clone(), color, m, depth)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
