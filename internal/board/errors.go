package board

import "errors"

var (
	// ErrInvalidCell indicates malformed algebraic cell notation.
	ErrInvalidCell = errors.New("invalid cell")

	// ErrInvalidMove indicates malformed coordinate move notation.
	ErrInvalidMove = errors.New("invalid move string")
)
