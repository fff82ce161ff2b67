// Package board implements the chess board, its pieces and move generation.
package board

import "fmt"

// Cell addresses one of the 64 squares.
// A1=0, H1=7, A8=56, H8=63. Rank is cell/8 and file is cell%8.
type Cell uint8

// Named cells, rank by rank.
const (
	A1 Cell = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoCell Cell = 64
)

// NumCells is the number of cells on the board.
const NumCells = 64

// File returns the file (0-7, where 0=a, 7=h).
func (c Cell) File() int {
	return int(c) & 7
}

// Rank returns the rank (0-7, where 0 is rank "1").
func (c Cell) Rank() int {
	return int(c) >> 3
}

// String returns algebraic notation for the cell (e.g., "e4").
func (c Cell) String() string {
	if c >= NoCell {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+c.File(), '1'+c.Rank())
}

// NewCell creates a cell from a 0-indexed file and rank.
func NewCell(file, rank int) Cell {
	return Cell(rank*8 + file)
}

// ParseCell parses algebraic notation (e.g., "e4") into a Cell.
func ParseCell(s string) (Cell, error) {
	if len(s) != 2 {
		return NoCell, fmt.Errorf("%w: %q", ErrInvalidCell, s)
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'

	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoCell, fmt.Errorf("%w: %q", ErrInvalidCell, s)
	}

	return NewCell(file, rank), nil
}

// IsValid reports whether the cell is on the board.
func (c Cell) IsValid() bool {
	return c < NoCell
}

// offset returns the cell df files and dr ranks away, or false if that
// falls off the board. Files are checked explicitly so that a horizontal
// step never wraps onto the next rank.
func (c Cell) offset(df, dr int) (Cell, bool) {
	f, r := c.File()+df, c.Rank()+dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoCell, false
	}
	return NewCell(f, r), true
}
