package engine

import (
	"chess/internal/server/board"
	"chess/internal/server/core"
	"chess/internal/server/notation"
)

// IsSquareAttacked reports whether any piece of color by attacks sq.
// Pawns attack diagonally only, whatever stands on sq.
func IsSquareAttacked(b board.Board, sq notation.Square, by core.Color) bool {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			piece := b[r][f]
			if owner, ok := board.ColorOf(piece); !ok || owner != by {
				continue
			}
			src := notation.Square{Rank: r, File: f}
			if board.Kind(piece) == 'P' {
				dir, _ := pawnDirection(by)
				if sq.Rank == src.Rank+dir && abs(sq.File-src.File) == 1 {
					return true
				}
				continue
			}
			if canReach(b, src, sq) {
				return true
			}
		}
	}
	return false
}

// InCheck reports whether color's king is attacked. A board without that
// king is never in check.
func InCheck(b board.Board, color core.Color) bool {
	king, ok := b.Find(board.PieceFor('K', color))
	if !ok {
		return false
	}
	return IsSquareAttacked(b, king, core.OppositeColor(color))
}

// LeavesKingInCheck simulates the candidate and checks the mover's king
func LeavesKingInCheck(b board.Board, c Candidate) bool {
	color, ok := board.ColorOf(b.At(c.Source))
	if !ok {
		return false
	}
	after := ExecuteMove(b, c.Source, c.Target)
	return InCheck(after.Board, color)
}

// LegalMoves is FindPossibleMoves with moves that expose the mover's king removed
func LegalMoves(b board.Board, color core.Color, piece byte, target notation.Square) []Candidate {
	var legal []Candidate
	for _, c := range FindPossibleMoves(b, color, piece, target) {
		if !LeavesKingInCheck(b, c) {
			legal = append(legal, c)
		}
	}
	return legal
}

// HasLegalMove reports whether color has at least one check-safe move
func HasLegalMove(b board.Board, color core.Color) bool {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if owner, ok := board.ColorOf(b[r][f]); !ok || owner != color {
				continue
			}
			src := notation.Square{Rank: r, File: f}
			for tr := 0; tr < 8; tr++ {
				for tf := 0; tf < 8; tf++ {
					target := notation.Square{Rank: tr, File: tf}
					if owner, ok := board.ColorOf(b.At(target)); ok && owner == color {
						continue
					}
					c := Candidate{Source: src, Target: target}
					if canReach(b, src, target) && !LeavesKingInCheck(b, c) {
						return true
					}
				}
			}
		}
	}
	return false
}
