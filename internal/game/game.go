// Package game tracks whose turn it is on a board and derives whether the
// game is still being played, drawn by stalemate, or won.
package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hailam/chester/internal/board"
)

var (
	// ErrIllegalMove is returned by Play for a move the board does not
	// generate for the side to move.
	ErrIllegalMove = errors.New("illegal move")

	// ErrGameOver is returned by Play once the game has reached a
	// terminal state.
	ErrGameOver = errors.New("game is over")
)

// Game owns a board and the color to move. White moves first.
//
// A Game is not safe for concurrent use.
type Game struct {
	board   *board.Board
	active  board.Color
	history []board.Move
}

// New returns a game on b with White to move. The game takes ownership of
// b; callers must not mutate it except through the game.
func New(b *board.Board) *Game {
	return &Game{board: b, active: board.White}
}

// NewStandard returns a game from the standard starting position.
func NewStandard() *Game {
	return New(board.NewStandard())
}

// ActivePlayer returns the color to move.
func (g *Game) ActivePlayer() board.Color {
	return g.active
}

// Board returns the board owned by the game. It is the same pointer the
// game was created with.
func (g *Game) Board() *board.Board {
	return g.board
}

// Move relocates the piece on from to to and hands the turn to the other
// side. The move is not validated; use Play for checked moves.
func (g *Game) Move(from, to board.Cell) {
	g.board.Move(from, to)
	g.active = g.active.Other()
	g.history = append(g.history, board.NewMove(from, to))
}

// Play makes the move from->to for the side to move after checking that
// the game is not over and that the board generates the move.
func (g *Game) Play(from, to board.Cell) error {
	if st := g.State(); st.IsOver() {
		return fmt.Errorf("%w: %v", ErrGameOver, st)
	}
	if !from.IsValid() || !to.IsValid() {
		return fmt.Errorf("%w: %v%v: cell out of range", ErrIllegalMove, from, to)
	}

	p := g.board.Get(from)
	if p.IsNone() || p.Color() != g.active {
		return fmt.Errorf("%w: %v: no %v piece on %v", ErrIllegalMove, board.NewMove(from, to), g.active, from)
	}
	if !slices.Contains(g.board.Moves(from), to) {
		return fmt.Errorf("%w: %v", ErrIllegalMove, board.NewMove(from, to))
	}

	g.Move(from, to)
	return nil
}

// State derives the current state for the side to move. Nothing is cached.
func (g *Game) State() State {
	return StateOf(g.board, g.active)
}

// History returns the moves made through the game, oldest first.
func (g *Game) History() []board.Move {
	return slices.Clone(g.history)
}
