package board

import "fmt"

// Move relocates whatever stands on From to To.
type Move struct {
	From Cell
	To   Cell
}

// NoMove represents the absence of a move.
var NoMove = Move{From: NoCell, To: NoCell}

// NewMove creates a move.
func NewMove(from, to Cell) Move {
	return Move{From: from, To: to}
}

// String returns coordinate notation (e.g., "e2e4"), or "0000" for NoMove.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	return m.From.String() + m.To.String()
}

// ParseMove parses coordinate notation such as "e2e4". It does not check
// legality.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}

	from, err := ParseCell(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %w", ErrInvalidMove, s, err)
	}

	to, err := ParseCell(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %w", ErrInvalidMove, s, err)
	}

	return NewMove(from, to), nil
}
