package engine

import (
	"time"

	"github.com/hailam/chester/internal/board"
)

// TimeControl contains clock parameters as sent by a GUI.
type TimeControl struct {
	Time      [2]time.Duration // remaining time, indexed by board.Color
	Inc       [2]time.Duration // increment per move, indexed by board.Color
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move (overrides other time controls)
}

// Budget returns how long us may think about the current move. ply is the
// number of half-moves played so far. Zero means no clock was given.
func (tc TimeControl) Budget(us board.Color, ply int) time.Duration {
	if tc.MoveTime > 0 {
		return tc.MoveTime
	}

	timeLeft := tc.Time[us]
	if timeLeft <= 0 {
		return 0
	}
	inc := tc.Inc[us]

	// Sudden death: expect fewer moves as the game goes on.
	mtg := tc.MovesToGo
	if mtg == 0 {
		mtg = min(max(50-ply/4, 10), 50)
	}

	budget := timeLeft/time.Duration(mtg) + inc*9/10

	// Early moves get a little less.
	if ply < 8 {
		budget = budget * 85 / 100
	}

	// Never use more than 80% of what is left.
	budget = min(budget, timeLeft*8/10)
	return max(budget, 10*time.Millisecond)
}
