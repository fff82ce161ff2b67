package game

import (
	"fmt"

	"github.com/hailam/chester/internal/board"
)

// State is the status of a game, derived from the board and the side to
// move. Playing is the only non-terminal state.
type State uint8

const (
	Playing State = iota
	Stalemate
	WhiteWins
	BlackWins
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Stalemate:
		return "Stalemate"
	case WhiteWins:
		return "WhiteWins"
	case BlackWins:
		return "BlackWins"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// IsOver reports whether s is terminal.
func (s State) IsOver() bool {
	return s != Playing
}

// Winner returns the winning color. ok is false for Playing and Stalemate.
func (s State) Winner() (c board.Color, ok bool) {
	switch s {
	case WhiteWins:
		return board.White, true
	case BlackWins:
		return board.Black, true
	}
	return board.White, false
}

// winsFor returns the state in which c has won.
func winsFor(c board.Color) State {
	if c == board.White {
		return WhiteWins
	}
	return BlackWins
}

// StateOf derives the state of b with color to move. If color has any
// legal move the game is still playing. Otherwise color is checkmated when
// its king stands on a square the other side threatens, and stalemated
// when it does not. A board without a king for color is never checkmated.
func StateOf(b *board.Board, color board.Color) State {
	if b.HasLegalMoves(color) {
		return Playing
	}

	king := b.King(color)
	if king != board.NoCell && b.ThreatenedSquares(color.Other()).Has(king) {
		return winsFor(color.Other())
	}
	return Stalemate
}
