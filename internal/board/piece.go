package board

import "fmt"

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// Kind is the type of a chess piece. The set is closed.
type Kind uint8

const (
	Pawn Kind = iota
	Knight
	Bishop
	Rook
	Queen
	King
	numKinds
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Piece pairs a Kind with a Color. The zero value is NoPiece, so an
// all-zero Board is empty.
// Encoded as: 1 + kind + color*6
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1 + Piece(Pawn) + Piece(White)*6
	WhiteKnight Piece = 1 + Piece(Knight) + Piece(White)*6
	WhiteBishop Piece = 1 + Piece(Bishop) + Piece(White)*6
	WhiteRook   Piece = 1 + Piece(Rook) + Piece(White)*6
	WhiteQueen  Piece = 1 + Piece(Queen) + Piece(White)*6
	WhiteKing   Piece = 1 + Piece(King) + Piece(White)*6
	BlackPawn   Piece = 1 + Piece(Pawn) + Piece(Black)*6
	BlackKnight Piece = 1 + Piece(Knight) + Piece(Black)*6
	BlackBishop Piece = 1 + Piece(Bishop) + Piece(Black)*6
	BlackRook   Piece = 1 + Piece(Rook) + Piece(Black)*6
	BlackQueen  Piece = 1 + Piece(Queen) + Piece(Black)*6
	BlackKing   Piece = 1 + Piece(King) + Piece(Black)*6
)

// NewPiece creates a Piece from a Kind and Color.
func NewPiece(k Kind, c Color) Piece {
	if k >= numKinds || c > Black {
		panic(fmt.Sprintf("board: no piece for %v %v", c, k))
	}
	return 1 + Piece(k) + Piece(c)*6
}

// IsNone reports whether p is the empty piece.
func (p Piece) IsNone() bool {
	return p == NoPiece
}

// Kind returns the piece kind. Undefined for NoPiece.
func (p Piece) Kind() Kind {
	return Kind((p - 1) % 6)
}

// Color returns the piece color. Undefined for NoPiece.
func (p Piece) Color() Color {
	return Color((p - 1) / 6)
}

// String returns the piece letter, uppercase for white and lowercase for black.
func (p Piece) String() string {
	if p == NoPiece || p > BlackKing {
		return "."
	}
	return string("PNBRQKpnbrqk"[p-1])
}
