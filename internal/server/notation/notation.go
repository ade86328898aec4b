// Package notation maps board coordinates to algebraic square names and back.
//
// Rank index 0 is rank "8" (Black's back rank) and file index 0 is file "a",
// so the square [6,4] is "e2".
package notation

// Square is a (rank, file) coordinate pair on the board grid
type Square struct {
	Rank int `json:"rank"`
	File int `json:"file"`
}

// Valid reports whether both indices are inside the 8x8 grid
func (s Square) Valid() bool {
	return s.Rank >= 0 && s.Rank < 8 && s.File >= 0 && s.File < 8
}

// Algebraic returns the square name. The square must be valid.
func (s Square) Algebraic() string {
	return string([]byte{byte('a' + s.File), byte('8' - s.Rank)})
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return s.Algebraic()
}

// Offset returns the square dr ranks and df files away, which may be off the board
func (s Square) Offset(dr, df int) Square {
	return Square{Rank: s.Rank + dr, File: s.File + df}
}

// FromAlgebraic parses a two character square name such as "e4".
// Anything else, including upper case file letters, is rejected.
func FromAlgebraic(s string) (Square, bool) {
	if len(s) != 2 {
		return Square{}, false
	}
	if s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Square{}, false
	}
	return Square{Rank: int('8' - s[1]), File: int(s[0] - 'a')}, true
}

// ToAlgebraic is the inverse of FromAlgebraic for in-range squares
func ToAlgebraic(s Square) string {
	return s.Algebraic()
}

// ParseUCI splits a coordinate move ("e2e4", "a7a8q") into its squares and
// optional promotion letter
func ParseUCI(move string) (from, to Square, promo byte, ok bool) {
	if len(move) < 4 || len(move) > 5 {
		return Square{}, Square{}, 0, false
	}
	if from, ok = FromAlgebraic(move[0:2]); !ok {
		return Square{}, Square{}, 0, false
	}
	if to, ok = FromAlgebraic(move[2:4]); !ok {
		return Square{}, Square{}, 0, false
	}
	if len(move) == 5 {
		promo = move[4]
		if promo != 'q' && promo != 'r' && promo != 'b' && promo != 'n' {
			return Square{}, Square{}, 0, false
		}
	}
	return from, to, promo, true
}

// UCI formats a coordinate move
func UCI(from, to Square) string {
	return from.Algebraic() + to.Algebraic()
}
