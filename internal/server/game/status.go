package game

import (
	"log"

	"chess/internal/server/board"
	"chess/internal/server/core"
	"chess/internal/server/engine"

	"github.com/corentings/chess/v2"
)

// Status is the check and game-end view of a position
type Status struct {
	State       core.State
	IsCheck     bool
	IsCheckmate bool
	IsStalemate bool
}

// Evaluate adjudicates the position for the side to move. Checkmate and
// stalemate come from the full rules implementation in corentings/chess,
// which also knows castling and en passant; if it rejects the FEN the
// engine's own king safety search is used instead.
func Evaluate(pos board.Position) Status {
	st := Status{
		State:   core.StateOngoing,
		IsCheck: engine.InCheck(pos.Board, pos.Turn),
	}

	var method chess.Method
	opt, err := chess.FEN(pos.FEN())
	if err == nil {
		method = chess.NewGame(opt).Position().Status()
	} else {
		log.Printf("adjudication fallback for %q: %v", pos.FEN(), err)
		method = chess.NoMethod
		if !engine.HasLegalMove(pos.Board, pos.Turn) {
			method = chess.Stalemate
			if st.IsCheck {
				method = chess.Checkmate
			}
		}
	}

	switch method {
	case chess.Checkmate:
		st.IsCheckmate = true
		st.IsCheck = true
		if pos.Turn == core.ColorWhite {
			st.State = core.StateBlackWins
		} else {
			st.State = core.StateWhiteWins
		}
	case chess.Stalemate:
		st.IsStalemate = true
		st.State = core.StateStalemate
	}
	return st
}

// ValidateFEN checks that a FEN is both well formed and a position the full
// rules implementation accepts
func ValidateFEN(fen string) (board.Position, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return board.Position{}, err
	}
	if _, err := chess.FEN(fen); err != nil {
		return board.Position{}, err
	}
	if _, ok := pos.Board.Find('K'); !ok {
		return board.Position{}, errMissingKing
	}
	if _, ok := pos.Board.Find('k'); !ok {
		return board.Position{}, errMissingKing
	}
	return pos, nil
}
