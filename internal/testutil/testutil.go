// Package testutil provides shared test helpers: compact board setup and
// go-cmp based assertions.
package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/chester/internal/board"
)

var kindLetters = map[byte]board.Kind{
	'P': board.Pawn,
	'N': board.Knight,
	'B': board.Bishop,
	'R': board.Rook,
	'Q': board.Queen,
	'K': board.King,
}

// Board builds a board from placements such as "Ke1" (white king on e1)
// or "qd8" (black queen on d8). Uppercase letters are white.
func Board(t testing.TB, placements ...string) *board.Board {
	t.Helper()
	b := &board.Board{}
	for _, pl := range placements {
		b.Put(Cell(t, pl[1:]), Piece(t, pl[0]))
	}
	return b
}

// Piece converts a piece letter to a Piece, uppercase for white.
func Piece(t testing.TB, letter byte) board.Piece {
	t.Helper()
	color := board.White
	if letter >= 'a' && letter <= 'z' {
		color = board.Black
		letter -= 'a' - 'A'
	}
	kind, ok := kindLetters[letter]
	if !ok {
		t.Fatalf("unknown piece letter %q", letter)
	}
	return board.NewPiece(kind, color)
}

// Cell parses algebraic notation or fails the test.
func Cell(t testing.TB, s string) board.Cell {
	t.Helper()
	c, err := board.ParseCell(s)
	if err != nil {
		t.Fatalf("bad cell %q: %v", s, err)
	}
	return c
}

// Cells parses a list of algebraic cells.
func Cells(t testing.TB, names ...string) []board.Cell {
	t.Helper()
	out := make([]board.Cell, len(names))
	for i, n := range names {
		out[i] = Cell(t, n)
	}
	return out
}

// Move parses coordinate notation such as "e2e4" or fails the test.
func Move(t testing.TB, s string) board.Move {
	t.Helper()
	m, err := board.ParseMove(s)
	if err != nil {
		t.Fatalf("bad move %q: %v", s, err)
	}
	return m
}

// AssertEqual compares got and want using cmp.Diff and reports differences.
func AssertEqual(t testing.TB, got, want any, msg string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("%s: mismatch (-want +got):\n%s", msg, diff)
	}
}

// AssertSameCells compares two cell lists ignoring order.
func AssertSameCells(t testing.TB, got, want []board.Cell, msg string) {
	t.Helper()
	AssertEqual(t, board.NewCellSet(got...).String(), board.NewCellSet(want...).String(), msg)
}
