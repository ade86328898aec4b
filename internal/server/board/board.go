package board

import (
	"fmt"
	"strings"

	"chess/internal/server/core"
	"chess/internal/server/notation"
)

// Empty marks a square with no piece
const Empty byte = ' '

// Board is an 8x8 grid of piece tokens, row 0 is Black's back rank.
// It is an array so every assignment and call receives its own copy.
type Board [8][8]byte

var initialRows = [8]string{
	"rnbqkbnr",
	"pppppppp",
	"        ",
	"        ",
	"        ",
	"        ",
	"PPPPPPPP",
	"RNBQKBNR",
}

// Initial returns a fresh board in the standard starting layout
func Initial() Board {
	var b Board
	for r, row := range initialRows {
		for f := 0; f < 8; f++ {
			b[r][f] = row[f]
		}
	}
	return b
}

// Cleared returns a board with every square empty
func Cleared() Board {
	var b Board
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			b[r][f] = Empty
		}
	}
	return b
}

func (b Board) At(sq notation.Square) byte {
	return b[sq.Rank][sq.File]
}

// Set returns a copy of the board with piece placed on sq
func (b Board) Set(sq notation.Square, piece byte) Board {
	b[sq.Rank][sq.File] = piece
	return b
}

// Row returns the tokens of one row as a string, blanks included
func (b Board) Row(r int) string {
	return string(b[r][:])
}

// Find returns the first square holding piece in row-major order
func (b Board) Find(piece byte) (notation.Square, bool) {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if b[r][f] == piece {
				return notation.Square{Rank: r, File: f}, true
			}
		}
	}
	return notation.Square{}, false
}

// ASCII creates an ASCII representation of the board
func (b Board) ASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < 8; f++ {
			piece := b[r][f]
			if IsEmpty(piece) {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}

// IsEmpty treats both the blank token and the zero byte as an empty square
func IsEmpty(p byte) bool {
	return p == Empty || p == 0
}

func IsWhite(p byte) bool {
	return p >= 'A' && p <= 'Z'
}

func IsBlack(p byte) bool {
	return p >= 'a' && p <= 'z'
}

// ColorOf returns the owner of a piece token
func ColorOf(p byte) (core.Color, bool) {
	switch {
	case IsWhite(p):
		return core.ColorWhite, true
	case IsBlack(p):
		return core.ColorBlack, true
	}
	return 0, false
}

// Kind returns the upper case piece letter regardless of color
func Kind(p byte) byte {
	if IsBlack(p) {
		return p - 'a' + 'A'
	}
	return p
}

// PieceFor returns the token of the given kind in the given color
func PieceFor(kind byte, color core.Color) byte {
	kind = Kind(kind)
	if color == core.ColorBlack {
		return kind - 'A' + 'a'
	}
	return kind
}

// PieceName returns the spoken name of a piece token
func PieceName(p byte) string {
	switch Kind(p) {
	case 'P':
		return "pawn"
	case 'N':
		return "knight"
	case 'B':
		return "bishop"
	case 'R':
		return "rook"
	case 'Q':
		return "queen"
	case 'K':
		return "king"
	}
	return ""
}
