package board

import (
	"fmt"
	"strconv"
	"strings"

	"chess/internal/server/core"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Position is the board plus the side to move, castling rights,
// en passant target and move clocks
type Position struct {
	Board     Board
	Turn      core.Color
	Castling  string // subset of "KQkq", or "-"
	EnPassant string // algebraic square, or "-"
	Halfmove  int
	Fullmove  int
}

// InitialPosition returns the standard starting position
func InitialPosition() Position {
	return Position{
		Board:     Initial(),
		Turn:      core.ColorWhite,
		Castling:  "KQkq",
		EnPassant: "-",
		Halfmove:  0,
		Fullmove:  1,
	}
}

// FEN renders the position in Forsyth-Edwards Notation
func (p Position) FEN() string {
	return ToFEN(p)
}

// ToFEN renders the six FEN fields separated by single spaces
func ToFEN(p Position) string {
	var sb strings.Builder

	for r := 0; r < 8; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		run := 0
		for f := 0; f < 8; f++ {
			piece := p.Board[r][f]
			if IsEmpty(piece) {
				run++
				continue
			}
			if run > 0 {
				sb.WriteString(strconv.Itoa(run))
				run = 0
			}
			sb.WriteByte(piece)
		}
		if run > 0 {
			sb.WriteString(strconv.Itoa(run))
		}
	}

	sb.WriteByte(' ')
	if p.Turn == core.ColorBlack {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}

	castling := p.Castling
	if castling == "" {
		castling = "-"
	}
	enPassant := p.EnPassant
	if enPassant == "" {
		enPassant = "-"
	}
	fmt.Fprintf(&sb, " %s %s %d %d", castling, enPassant, p.Halfmove, p.Fullmove)

	return sb.String()
}

// ParseFEN reads a six field FEN string into a Position
func ParseFEN(fen string) (Position, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return Position{}, fmt.Errorf("invalid FEN: expected 6 parts, got %d", len(parts))
	}

	p := Position{Board: Cleared()}

	// Parse board
	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return Position{}, fmt.Errorf("invalid FEN: expected 8 ranks")
	}

	for r := 0; r < 8; r++ {
		file := 0
		for _, ch := range ranks[r] {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if !strings.ContainsRune("pnbrqkPNBRQK", ch) {
				return Position{}, fmt.Errorf("invalid FEN: unknown piece %q in rank %d", ch, 8-r)
			}
			if file >= 8 {
				return Position{}, fmt.Errorf("invalid FEN: too many pieces in rank %d", 8-r)
			}
			p.Board[r][file] = byte(ch)
			file++
		}
		if file != 8 {
			return Position{}, fmt.Errorf("invalid FEN: rank %d has %d files", 8-r, file)
		}
	}

	switch parts[1] {
	case "w":
		p.Turn = core.ColorWhite
	case "b":
		p.Turn = core.ColorBlack
	default:
		return Position{}, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	if parts[2] != "-" && strings.Trim(parts[2], "KQkq") != "" {
		return Position{}, fmt.Errorf("invalid FEN: castling field %q", parts[2])
	}
	p.Castling = parts[2]

	if parts[3] != "-" && (len(parts[3]) != 2 || parts[3][0] < 'a' || parts[3][0] > 'h' ||
		(parts[3][1] != '3' && parts[3][1] != '6')) {
		return Position{}, fmt.Errorf("invalid FEN: en passant field %q", parts[3])
	}
	p.EnPassant = parts[3]

	var err error
	if p.Halfmove, err = strconv.Atoi(parts[4]); err != nil || p.Halfmove < 0 {
		return Position{}, fmt.Errorf("invalid FEN: halfmove counter")
	}
	if p.Fullmove, err = strconv.Atoi(parts[5]); err != nil || p.Fullmove < 1 {
		return Position{}, fmt.Errorf("invalid FEN: fullmove counter")
	}

	return p, nil
}
