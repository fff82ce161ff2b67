package engine

import (
	"fmt"
	"math/rand/v2"

	"github.com/hailam/chester/internal/board"
)

// Random picks moves uniformly in two stages: first one of the pieces that
// can move, then one of that piece's moves. Pieces with many moves are
// therefore not favoured over pieces with few.
//
// A Random is not safe for concurrent use.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a random chooser drawing from src.
func NewRandom(src rand.Source) *Random {
	return &Random{rng: rand.New(src)}
}

// ChooseMove implements Chooser.
func (r *Random) ChooseMove(b *board.Board, color board.Color) (board.Move, error) {
	var movable []board.Cell
	for c := board.A1; c < board.NoCell; c++ {
		p := b.Get(c)
		if !p.IsNone() && p.Color() == color && len(b.Moves(c)) > 0 {
			movable = append(movable, c)
		}
	}
	if len(movable) == 0 {
		return board.NoMove, fmt.Errorf("%w: %v to move", ErrNoLegalMoves, color)
	}

	from := movable[r.rng.IntN(len(movable))]
	moves := b.Moves(from)
	return board.NewMove(from, moves[r.rng.IntN(len(moves))]), nil
}
