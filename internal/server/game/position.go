package game

import (
	"strings"

	"chess/internal/server/board"
	"chess/internal/server/core"
	"chess/internal/server/engine"
	"chess/internal/server/notation"
)

// MoveRecord describes one applied move
type MoveRecord struct {
	UCI      string     `json:"uci"`
	Piece    byte       `json:"piece"`
	Color    core.Color `json:"color"`
	Captured byte       `json:"captured"`
	Promoted bool       `json:"promoted"`
	FENAfter string     `json:"fenAfter"`
}

// Describe renders the move for a spoken confirmation, e.g. "knight g1 to f3"
func (m MoveRecord) Describe() string {
	var sb strings.Builder
	sb.WriteString(board.PieceName(m.Piece))
	sb.WriteString(" ")
	sb.WriteString(m.UCI[0:2])
	sb.WriteString(" to ")
	sb.WriteString(m.UCI[2:4])
	if !board.IsEmpty(m.Captured) {
		sb.WriteString(" takes ")
		sb.WriteString(board.PieceName(m.Captured))
	}
	if m.Promoted {
		sb.WriteString(", promotes to queen")
	}
	return sb.String()
}

// rook home squares and the castling right each one carries
var rookHomes = map[notation.Square]byte{
	{Rank: 7, File: 0}: 'Q',
	{Rank: 7, File: 7}: 'K',
	{Rank: 0, File: 0}: 'q',
	{Rank: 0, File: 7}: 'k',
}

// NextPosition applies c to pos and advances side to move, castling rights,
// en passant target and both clocks
func NextPosition(pos board.Position, c engine.Candidate) (board.Position, MoveRecord) {
	piece := pos.Board.At(c.Source)
	mover, _ := board.ColorOf(piece)
	res := engine.ExecuteMove(pos.Board, c.Source, c.Target)

	next := board.Position{
		Board:     res.Board,
		Turn:      core.OppositeColor(mover),
		Castling:  pos.Castling,
		EnPassant: "-",
		Halfmove:  pos.Halfmove + 1,
		Fullmove:  pos.Fullmove,
	}

	isPawn := board.Kind(piece) == 'P'
	if isPawn || !board.IsEmpty(res.Captured) {
		next.Halfmove = 0
	}
	if mover == core.ColorBlack {
		next.Fullmove++
	}

	if isPawn && abs(c.Target.Rank-c.Source.Rank) == 2 {
		passed := notation.Square{Rank: (c.Source.Rank + c.Target.Rank) / 2, File: c.Source.File}
		next.EnPassant = passed.Algebraic()
	}

	next.Castling = updateCastling(pos.Castling, piece, c)

	return next, MoveRecord{
		UCI:      c.UCI(),
		Piece:    piece,
		Color:    mover,
		Captured: res.Captured,
		Promoted: res.Promoted,
		FENAfter: next.FEN(),
	}
}

func updateCastling(rights string, piece byte, c engine.Candidate) string {
	if rights == "-" || rights == "" {
		return "-"
	}

	drop := ""
	switch piece {
	case 'K':
		drop += "KQ"
	case 'k':
		drop += "kq"
	}
	// A rook leaving its home square or being captured there
	if right, ok := rookHomes[c.Source]; ok && board.Kind(piece) == 'R' {
		drop += string(right)
	}
	if right, ok := rookHomes[c.Target]; ok {
		drop += string(right)
	}

	kept := strings.Map(func(r rune) rune {
		if strings.ContainsRune(drop, r) {
			return -1
		}
		return r
	}, rights)
	if kept == "" {
		return "-"
	}
	return kept
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// UnsupportedMove names a castling or en passant move, which the engine
// does not play, or returns "" for anything else
func UnsupportedMove(pos board.Position, from, to notation.Square) string {
	piece := pos.Board.At(from)
	color, ok := board.ColorOf(piece)
	if !ok {
		return ""
	}
	homeRank, forward := 7, -1
	if color == core.ColorBlack {
		homeRank, forward = 0, 1
	}

	switch board.Kind(piece) {
	case 'K':
		if from.Rank == homeRank && from.File == 4 && to.Rank == homeRank && abs(from.File-to.File) == 2 {
			return "castling"
		}
	case 'P':
		if to.Rank == from.Rank+forward && abs(from.File-to.File) == 1 &&
			board.IsEmpty(pos.Board.At(to)) && pos.EnPassant == to.Algebraic() {
			return "en passant"
		}
	}
	return ""
}
