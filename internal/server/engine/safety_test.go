package engine

import (
	"testing"

	"chess/internal/server/board"
	"chess/internal/server/core"

	"github.com/google/go-cmp/cmp"
)

func TestInCheck(t *testing.T) {
	tests := []struct {
		name   string
		pieces map[string]byte
		color  core.Color
		want   bool
	}{
		{"initial", nil, core.ColorWhite, false},
		{"rook on file", map[string]byte{"e1": 'K', "e8": 'r'}, core.ColorWhite, true},
		{"rook blocked", map[string]byte{"e1": 'K', "e4": 'P', "e8": 'r'}, core.ColorWhite, false},
		{"pawn attacks diagonally", map[string]byte{"e1": 'K', "d2": 'p'}, core.ColorWhite, true},
		{"pawn does not attack forward", map[string]byte{"e1": 'K', "e2": 'p'}, core.ColorWhite, false},
		{"white pawn attacks black king", map[string]byte{"e8": 'k', "d7": 'P'}, core.ColorBlack, true},
		{"knight", map[string]byte{"e8": 'k', "f6": 'N'}, core.ColorBlack, true},
		{"bishop", map[string]byte{"a1": 'K', "h8": 'b'}, core.ColorWhite, true},
		{"no king", map[string]byte{"h8": 'q'}, core.ColorWhite, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := board.Initial()
			if tt.pieces != nil {
				b = place(t, tt.pieces)
			}
			if got := InCheck(b, tt.color); got != tt.want {
				t.Errorf("InCheck() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLegalMovesFiltersPinnedPiece(t *testing.T) {
	// Knight on e2 is pinned against the king by the rook on e8
	b := place(t, map[string]byte{"e1": 'K', "e2": 'N', "e8": 'r', "a8": 'k'})

	candidates := FindPossibleMoves(b, core.ColorWhite, 'N', sq(t, "c3"))
	if len(candidates) != 1 {
		t.Fatalf("FindPossibleMoves() = %v, want the pinned knight", candidates)
	}
	if !LeavesKingInCheck(b, candidates[0]) {
		t.Error("LeavesKingInCheck() = false for pinned knight")
	}
	if got := LegalMoves(b, core.ColorWhite, 'N', sq(t, "c3")); len(got) != 0 {
		t.Errorf("LegalMoves() = %v, want none", got)
	}
}

func TestLegalMovesKingCannotStepIntoCheck(t *testing.T) {
	b := place(t, map[string]byte{"e1": 'K', "d8": 'r', "h8": 'k'})

	got := sources(LegalMoves(b, core.ColorWhite, 'K', sq(t, "d1")))
	if diff := cmp.Diff([]string{}, got); diff != "" {
		t.Errorf("LegalMoves(d1) mismatch (-want +got):\n%s", diff)
	}
	got = sources(LegalMoves(b, core.ColorWhite, 'K', sq(t, "f1")))
	if diff := cmp.Diff([]string{"e1"}, got); diff != "" {
		t.Errorf("LegalMoves(f1) mismatch (-want +got):\n%s", diff)
	}
}

func TestHasLegalMove(t *testing.T) {
	tests := []struct {
		name   string
		pieces map[string]byte
		color  core.Color
		want   bool
	}{
		{"initial", nil, core.ColorWhite, true},
		// Back rank mate: black king h8 boxed by own pawns, white rook on a8
		{"back rank mate", map[string]byte{"h8": 'k', "g7": 'p', "h7": 'p', "a8": 'R', "a1": 'K'}, core.ColorBlack, false},
		// Classic stalemate: black king a8, white queen b6, white king c1
		{"stalemate", map[string]byte{"a8": 'k', "b6": 'Q', "c1": 'K'}, core.ColorBlack, false},
		{"king can escape", map[string]byte{"a8": 'k', "b5": 'Q', "c1": 'K'}, core.ColorBlack, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := board.Initial()
			if tt.pieces != nil {
				b = place(t, tt.pieces)
			}
			if got := HasLegalMove(b, tt.color); got != tt.want {
				t.Errorf("HasLegalMove() = %v, want %v", got, tt.want)
			}
		})
	}
}
