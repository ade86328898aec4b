// Package transcript turns spoken or typed phrases into move, color and
// difficulty tokens. Every parser fails softly with a false second result so
// the conversational layer can ask again.
package transcript

import (
	"chess/internal/server/board"
	"chess/internal/server/core"
	"chess/internal/server/notation"
)

// PieceToken is the parser's own piece alphabet. Knight is 'k' and king is
// 'K'; this casing is unrelated to the board's white/black casing.
type PieceToken byte

const (
	TokenPawn   PieceToken = 'p'
	TokenRook   PieceToken = 'r'
	TokenKnight PieceToken = 'k'
	TokenBishop PieceToken = 'b'
	TokenQueen  PieceToken = 'q'
	TokenKing   PieceToken = 'K'
)

var pieceWords = map[string]PieceToken{
	"pawn":   TokenPawn,
	"rook":   TokenRook,
	"knight": TokenKnight,
	"bishop": TokenBishop,
	"queen":  TokenQueen,
	"king":   TokenKing,
}

// Kind returns the upper case board piece letter for the token
func (t PieceToken) Kind() byte {
	switch t {
	case TokenPawn:
		return 'P'
	case TokenRook:
		return 'R'
	case TokenKnight:
		return 'N'
	case TokenBishop:
		return 'B'
	case TokenQueen:
		return 'Q'
	case TokenKing:
		return 'K'
	}
	return 0
}

// BoardPiece maps the token to the board token of the given color
func (t PieceToken) BoardPiece(color core.Color) byte {
	return board.PieceFor(t.Kind(), color)
}

func (t PieceToken) String() string {
	return string(rune(t))
}

// Move is a parsed move phrase. Source is set only when the speaker named
// the square the piece starts from.
type Move struct {
	Piece  PieceToken `json:"piece"`
	Source string     `json:"source,omitempty"`
	Target string     `json:"target"`
}

// Square returns the target as a board coordinate
func (m Move) Square() notation.Square {
	sq, _ := notation.FromAlgebraic(m.Target)
	return sq
}

// From returns the named source square, if any
func (m Move) From() (notation.Square, bool) {
	if m.Source == "" {
		return notation.Square{}, false
	}
	return notation.FromAlgebraic(m.Source)
}

// fillers may sit between the piece and a square
var fillers = map[string]bool{
	"to":       true,
	"takes":    true,
	"captures": true,
	"from":     true,
	"on":       true,
	"at":       true,
}

func skipFillers(tokens []string) []string {
	for len(tokens) > 0 && fillers[tokens[0]] {
		tokens = tokens[1:]
	}
	return tokens
}

// ParseMove reads "rook to d4", "pawn e5", "Knight F3" and similar phrases.
// The first piece word is used, and the square must follow it. When two
// squares follow ("rook a1 to d1", "rook from a1 to d1") the first is the
// source and the second the target.
func ParseMove(text string) (Move, bool) {
	tokens := Tokens(text)

	for i, tok := range tokens {
		piece, ok := pieceWords[tok]
		if !ok {
			continue
		}

		first, n, ok := leadingSquare(skipFillers(tokens[i+1:]))
		if !ok {
			return Move{}, false
		}
		rest := skipFillers(skipFillers(tokens[i+1:])[n:])
		if second, _, ok := leadingSquare(rest); ok {
			return Move{Piece: piece, Source: first, Target: second}, true
		}
		return Move{Piece: piece, Target: first}, true
	}

	return Move{}, false
}

// ParseSquare finds the first square in a phrase such as "a1" or
// "the one on a 1", used to answer "which one?"
func ParseSquare(text string) (string, bool) {
	tokens := Tokens(text)
	for i := range tokens {
		if sq, _, ok := leadingSquare(tokens[i:]); ok {
			return sq, true
		}
	}
	return "", false
}

// leadingSquare accepts "e4" or the split form "e 4" that dictation
// produces, and reports how many tokens it used
func leadingSquare(tokens []string) (string, int, bool) {
	if len(tokens) == 0 {
		return "", 0, false
	}
	if _, ok := notation.FromAlgebraic(tokens[0]); ok {
		return tokens[0], 1, true
	}
	if len(tokens) > 1 {
		joined := tokens[0] + tokens[1]
		if _, ok := notation.FromAlgebraic(joined); ok {
			return joined, 2, true
		}
	}
	return "", 0, false
}

var colorWords = map[string]core.Color{
	"white": core.ColorWhite,
	"light": core.ColorWhite,
	"black": core.ColorBlack,
	"dark":  core.ColorBlack,
}

// ParseColor maps white/light and black/dark to a player color
func ParseColor(text string) (core.Color, bool) {
	for _, tok := range Tokens(text) {
		if c, ok := colorWords[tok]; ok {
			return c, true
		}
	}
	return 0, false
}
