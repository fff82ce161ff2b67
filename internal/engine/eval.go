// Package engine picks moves for one side of a chess position. The main
// chooser is a fixed-depth negamax search over the board's legal moves,
// scored by material; a uniform random chooser serves as a baseline.
package engine

import "github.com/hailam/chester/internal/board"

// Material values
const (
	PawnValue   = 1
	KnightValue = 3
	BishopValue = 3
	RookValue   = 7
	QueenValue  = 9
	KingValue   = 0
)

// pieceValues is indexed by board.Kind.
var pieceValues = [6]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue}

// Evaluate returns the material balance of b from the perspective of
// color: its own pieces count positive, the other side's negative.
func Evaluate(b *board.Board, color board.Color) int {
	score := 0
	for c := board.A1; c < board.NoCell; c++ {
		p := b.Get(c)
		if p.IsNone() {
			continue
		}
		if p.Color() == color {
			score += pieceValues[p.Kind()]
		} else {
			score -= pieceValues[p.Kind()]
		}
	}
	return score
}
