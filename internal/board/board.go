package board

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Board maps each of the 64 cells to at most one piece. The zero value is
// an empty board. Board values compare equal with == when every cell
// matches.
//
// A Board is not safe for concurrent use. Move generation probes moves by
// mutating the board in place and restoring it, so even read-looking calls
// such as Moves must not overlap with any other call on the same Board.
type Board struct {
	cells [NumCells]Piece
}

var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewStandard returns a board with the standard 32-piece starting setup.
func NewStandard() *Board {
	b := &Board{}
	for file := 0; file < 8; file++ {
		b.cells[NewCell(file, 0)] = NewPiece(backRank[file], White)
		b.cells[NewCell(file, 1)] = WhitePawn
		b.cells[NewCell(file, 6)] = BlackPawn
		b.cells[NewCell(file, 7)] = NewPiece(backRank[file], Black)
	}
	return b
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	nb := *b
	return &nb
}

// Get returns the piece on c, or NoPiece if c is empty.
func (b *Board) Get(c Cell) Piece {
	return b.cells[c]
}

// IsEmpty reports whether c holds no piece.
func (b *Board) IsEmpty(c Cell) bool {
	return b.cells[c] == NoPiece
}

// Put places p on c, replacing whatever was there. Put(c, NoPiece) clears c.
func (b *Board) Put(c Cell, p Piece) {
	b.cells[c] = p
}

// Move relocates the piece on from to to, overwriting to and clearing from.
// Legality is not checked.
func (b *Board) Move(from, to Cell) {
	b.cells[to] = b.cells[from]
	b.cells[from] = NoPiece
}

// Count returns the number of pieces of the given color.
func (b *Board) Count(c Color) int {
	n := 0
	for _, p := range b.cells {
		if p != NoPiece && p.Color() == c {
			n++
		}
	}
	return n
}

// King returns the cell of c's king, or NoCell if there is none. With more
// than one king the lowest cell wins.
func (b *Board) King(c Color) Cell {
	king := NewPiece(King, c)
	for cell, p := range b.cells {
		if p == king {
			return Cell(cell)
		}
	}
	return NoCell
}

// AppendBinary appends the 64 cell codes to dst.
func (b *Board) AppendBinary(dst []byte) []byte {
	for _, p := range b.cells {
		dst = append(dst, byte(p))
	}
	return dst
}

// Hash returns a 64-bit digest of the piece placement.
func (b *Board) Hash() uint64 {
	var buf [NumCells]byte
	return xxhash.Sum64(b.AppendBinary(buf[:0]))
}

// String returns a diagram with rank 8 at the top.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteString("  ")
		for file := 0; file < 8; file++ {
			sb.WriteString(b.cells[NewCell(file, rank)].String())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n")
	return sb.String()
}
