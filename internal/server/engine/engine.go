// Package engine finds and applies moves on a board.Board.
//
// FindPossibleMoves is a candidate generator: it knows how pieces move and
// which squares block them, but it does not look at king safety. LegalMoves
// layers the king safety filter on top for callers that need check-safe moves.
package engine

import (
	"chess/internal/server/board"
	"chess/internal/server/core"
	"chess/internal/server/notation"
)

// Candidate pairs a source square with a target square, not yet applied
type Candidate struct {
	Source notation.Square `json:"source"`
	Target notation.Square `json:"target"`
}

// UCI returns the coordinate form of the candidate, e.g. "e2e4"
func (c Candidate) UCI() string {
	return notation.UCI(c.Source, c.Target)
}

// Result is the outcome of ExecuteMove
type Result struct {
	Board    board.Board
	Captured byte // board.Empty when nothing was taken
	Promoted bool
}

var (
	knightJumps = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingSteps   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	rookRays    = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopRays  = [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	queenRays   = append(append([][2]int{}, rookRays...), bishopRays...)
)

// FindPossibleMoves returns every square holding color's piece of the given
// kind that can reach target, in row-major scan order. The piece letter may be
// given in either case. King safety is not considered.
func FindPossibleMoves(b board.Board, color core.Color, piece byte, target notation.Square) []Candidate {
	if !target.Valid() {
		return nil
	}
	if owner, ok := board.ColorOf(b.At(target)); ok && owner == color {
		return nil
	}

	want := board.PieceFor(piece, color)
	var moves []Candidate
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if b[r][f] != want {
				continue
			}
			src := notation.Square{Rank: r, File: f}
			if canReach(b, src, target) {
				moves = append(moves, Candidate{Source: src, Target: target})
			}
		}
	}
	return moves
}

// canReach reports whether the piece on src can move to target under the
// piece movement rules. The caller has already excluded own-piece targets.
func canReach(b board.Board, src, target notation.Square) bool {
	piece := b.At(src)
	color, ok := board.ColorOf(piece)
	if !ok || src == target {
		return false
	}

	switch board.Kind(piece) {
	case 'P':
		return pawnCanReach(b, src, target, color)
	case 'N':
		return stepReaches(src, target, knightJumps[:])
	case 'K':
		return stepReaches(src, target, kingSteps[:])
	case 'B':
		return rayReaches(b, src, target, bishopRays)
	case 'R':
		return rayReaches(b, src, target, rookRays)
	case 'Q':
		return rayReaches(b, src, target, queenRays)
	}
	return false
}

func pawnDirection(color core.Color) (dir, startRank int) {
	if color == core.ColorWhite {
		return -1, 6
	}
	return 1, 1
}

func pawnCanReach(b board.Board, src, target notation.Square, color core.Color) bool {
	dir, startRank := pawnDirection(color)
	occupant := b.At(target)

	// Diagonal capture
	if target.Rank == src.Rank+dir && abs(target.File-src.File) == 1 {
		owner, ok := board.ColorOf(occupant)
		return ok && owner != color
	}

	if target.File != src.File || !board.IsEmpty(occupant) {
		return false
	}
	if target.Rank == src.Rank+dir {
		return true
	}
	// Double step from the starting rank, both squares empty
	if src.Rank == startRank && target.Rank == src.Rank+2*dir {
		return board.IsEmpty(b.At(src.Offset(dir, 0)))
	}
	return false
}

func stepReaches(src, target notation.Square, steps [][2]int) bool {
	for _, s := range steps {
		if src.Offset(s[0], s[1]) == target {
			return true
		}
	}
	return false
}

// rayReaches walks each ray from src and stops at the first occupied square.
// That square can still be the target (a capture) but nothing beyond it is.
func rayReaches(b board.Board, src, target notation.Square, rays [][2]int) bool {
	for _, ray := range rays {
		sq := src.Offset(ray[0], ray[1])
		for sq.Valid() {
			if sq == target {
				return true
			}
			if !board.IsEmpty(b.At(sq)) {
				break
			}
			sq = sq.Offset(ray[0], ray[1])
		}
	}
	return false
}

// ExecuteMove relocates the piece on source to target without checking
// legality and returns the new board with whatever stood on target.
// A pawn reaching the far rank becomes a queen of its color. The board passed
// in is a copy, so the caller's board is unchanged.
func ExecuteMove(b board.Board, source, target notation.Square) Result {
	piece := b.At(source)
	captured := b.At(target)
	if board.IsEmpty(captured) {
		captured = board.Empty
	}

	promoted := false
	if board.Kind(piece) == 'P' {
		if (board.IsWhite(piece) && target.Rank == 0) || (board.IsBlack(piece) && target.Rank == 7) {
			piece = board.PieceFor('Q', colorOf(piece))
			promoted = true
		}
	}

	b[source.Rank][source.File] = board.Empty
	b[target.Rank][target.File] = piece

	return Result{Board: b, Captured: captured, Promoted: promoted}
}

func colorOf(p byte) core.Color {
	c, _ := board.ColorOf(p)
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
