package board

import (
	"math/bits"
	"strings"
)

// CellSet is a set of cells, one bit per cell.
// Bit 0 = A1, Bit 7 = H1, Bit 56 = A8, Bit 63 = H8.
type CellSet uint64

// NewCellSet returns a set holding the given cells.
func NewCellSet(cells ...Cell) CellSet {
	var s CellSet
	for _, c := range cells {
		s = s.Add(c)
	}
	return s
}

// Add returns the set with c added.
func (s CellSet) Add(c Cell) CellSet {
	return s | 1<<c
}

// Remove returns the set with c removed.
func (s CellSet) Remove(c Cell) CellSet {
	return s &^ (1 << c)
}

// Has reports whether c is in the set. NoCell is never a member.
func (s CellSet) Has(c Cell) bool {
	if c >= NoCell {
		return false
	}
	return s&(1<<c) != 0
}

// Union returns the cells in either set.
func (s CellSet) Union(o CellSet) CellSet {
	return s | o
}

// Len returns the number of cells in the set.
func (s CellSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Empty reports whether the set has no cells.
func (s CellSet) Empty() bool {
	return s == 0
}

// Cells returns the members in ascending order.
func (s CellSet) Cells() []Cell {
	if s == 0 {
		return nil
	}
	out := make([]Cell, 0, s.Len())
	for s != 0 {
		out = append(out, Cell(bits.TrailingZeros64(uint64(s))))
		s &= s - 1
	}
	return out
}

// String lists the members in algebraic notation.
func (s CellSet) String() string {
	cells := s.Cells()
	names := make([]string, len(cells))
	for i, c := range cells {
		names[i] = c.String()
	}
	return "{" + strings.Join(names, " ") + "}"
}
