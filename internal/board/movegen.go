package board

import "fmt"

// maxPieceMoves bounds the pseudo-legal destinations of one piece (a
// centralized queen on an open board has 27).
const maxPieceMoves = 27

var (
	diagonalDirs   = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	orthogonalDirs = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	knightDeltas   = [4]int{-2, -1, 1, 2}
)

// Moves returns the legal destinations of the piece on c, in generation
// order: the pseudo-legal destinations for its kind minus those that would
// leave its own king threatened. An empty cell has no moves.
func (b *Board) Moves(c Cell) []Cell {
	p := b.cells[c]
	if p == NoPiece {
		return nil
	}

	var buf [maxPieceMoves]Cell
	pseudo := b.pseudoMoves(c, p, buf[:0])
	if len(pseudo) == 0 {
		return nil
	}

	legal := make([]Cell, 0, len(pseudo))
	for _, to := range pseudo {
		if !b.exposesKing(c, to) {
			legal = append(legal, to)
		}
	}
	return legal
}

// LegalMoves returns every legal move for color, by ascending origin cell
// and then generation order.
func (b *Board) LegalMoves(color Color) []Move {
	var moves []Move
	for c := A1; c < NoCell; c++ {
		p := b.cells[c]
		if p == NoPiece || p.Color() != color {
			continue
		}
		for _, to := range b.Moves(c) {
			moves = append(moves, NewMove(c, to))
		}
	}
	return moves
}

// HasLegalMoves reports whether color has at least one legal move.
func (b *Board) HasLegalMoves(color Color) bool {
	for c := A1; c < NoCell; c++ {
		p := b.cells[c]
		if p != NoPiece && p.Color() == color && len(b.Moves(c)) > 0 {
			return true
		}
	}
	return false
}

// ThreatenedSquares returns the union of the pseudo-legal destinations of
// every piece of color. It is deliberately not check filtered: legality
// filtering calls it, so filtering here would recurse without end.
func (b *Board) ThreatenedSquares(color Color) CellSet {
	var threats CellSet
	var buf [maxPieceMoves]Cell
	for c := A1; c < NoCell; c++ {
		p := b.cells[c]
		if p == NoPiece || p.Color() != color {
			continue
		}
		for _, to := range b.pseudoMoves(c, p, buf[:0]) {
			threats = threats.Add(to)
		}
	}
	return threats
}

// InCheck reports whether a king of color stands on a cell threatened by
// the other side.
func (b *Board) InCheck(color Color) bool {
	threats := b.ThreatenedSquares(color.Other())
	king := NewPiece(King, color)
	for c, p := range b.cells {
		if p == king && threats.Has(Cell(c)) {
			return true
		}
	}
	return false
}

// exposesKing plays from->to on the live board, tests whether the mover's
// king is then threatened, and restores both cells whatever the outcome.
func (b *Board) exposesKing(from, to Cell) bool {
	mover, captured := b.cells[from], b.cells[to]

	b.Move(from, to)
	exposed := b.InCheck(mover.Color())
	b.cells[from] = mover
	b.cells[to] = captured

	return exposed
}

// pseudoMoves appends the pseudo-legal destinations of p standing on c.
func (b *Board) pseudoMoves(c Cell, p Piece, dst []Cell) []Cell {
	switch p.Kind() {
	case Pawn:
		return b.pawnMoves(c, p.Color(), dst)
	case Knight:
		return b.knightMoves(c, p.Color(), dst)
	case Bishop:
		return b.rayMoves(c, p.Color(), diagonalDirs[:], dst)
	case Rook:
		return b.rayMoves(c, p.Color(), orthogonalDirs[:], dst)
	case Queen:
		dst = b.rayMoves(c, p.Color(), diagonalDirs[:], dst)
		return b.rayMoves(c, p.Color(), orthogonalDirs[:], dst)
	case King:
		return b.kingMoves(c, p.Color(), dst)
	default:
		panic(fmt.Sprintf("board: unknown piece kind %d on %v", p.Kind(), c))
	}
}

// canLand reports whether a piece of color may finish on to: empty or
// holding an enemy piece.
func (b *Board) canLand(to Cell, color Color) bool {
	p := b.cells[to]
	return p == NoPiece || p.Color() != color
}

func (b *Board) pawnMoves(c Cell, color Color, dst []Cell) []Cell {
	dir, startRank := 1, 1
	if color == Black {
		dir, startRank = -1, 6
	}

	ahead, ok := c.offset(0, dir)
	if !ok {
		// Farthest rank: nothing ahead, nothing to capture.
		return dst
	}

	if b.IsEmpty(ahead) {
		dst = append(dst, ahead)
		if c.Rank() == startRank {
			if double, ok := c.offset(0, 2*dir); ok && b.IsEmpty(double) {
				dst = append(dst, double)
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		target, ok := c.offset(df, dir)
		if !ok {
			continue
		}
		if p := b.cells[target]; p != NoPiece && p.Color() != color {
			dst = append(dst, target)
		}
	}

	return dst
}

func (b *Board) knightMoves(c Cell, color Color, dst []Cell) []Cell {
	for _, df := range knightDeltas {
		for _, dr := range knightDeltas {
			if df == dr || df == -dr {
				continue
			}
			to, ok := c.offset(df, dr)
			if ok && b.canLand(to, color) {
				dst = append(dst, to)
			}
		}
	}
	return dst
}

// rayMoves walks each direction one step at a time until the edge, an
// allied piece (excluded) or an enemy piece (included, then stop).
func (b *Board) rayMoves(c Cell, color Color, dirs [][2]int, dst []Cell) []Cell {
	for _, d := range dirs {
		to := c
		for {
			next, ok := to.offset(d[0], d[1])
			if !ok {
				break
			}
			to = next
			p := b.cells[to]
			if p == NoPiece {
				dst = append(dst, to)
				continue
			}
			if p.Color() != color {
				dst = append(dst, to)
			}
			break
		}
	}
	return dst
}

func (b *Board) kingMoves(c Cell, color Color, dst []Cell) []Cell {
	for dr := -1; dr <= 1; dr++ {
		for df := -1; df <= 1; df++ {
			if dr == 0 && df == 0 {
				continue
			}
			to, ok := c.offset(df, dr)
			if ok && b.canLand(to, color) {
				dst = append(dst, to)
			}
		}
	}
	return dst
}
