package notation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromAlgebraic(t *testing.T) {
	tests := []struct {
		in   string
		want Square
	}{
		{"a1", Square{7, 0}},
		{"h8", Square{0, 7}},
		{"e4", Square{4, 4}},
		{"d5", Square{3, 3}},
		{"e2", Square{6, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := FromAlgebraic(tt.in)
			if !ok {
				t.Fatalf("FromAlgebraic(%q) not found", tt.in)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromAlgebraic(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestFromAlgebraicInvalid(t *testing.T) {
	for _, in := range []string{"", "a", "a9", "i1", "a0", "E4", "e44", "4e"} {
		if sq, ok := FromAlgebraic(in); ok {
			t.Errorf("FromAlgebraic(%q) = %v, want not found", in, sq)
		}
	}
}

func TestToAlgebraic(t *testing.T) {
	tests := []struct {
		sq   Square
		want string
	}{
		{Square{7, 0}, "a1"},
		{Square{0, 7}, "h8"},
		{Square{4, 4}, "e4"},
		{Square{3, 3}, "d5"},
	}
	for _, tt := range tests {
		if got := ToAlgebraic(tt.sq); got != tt.want {
			t.Errorf("ToAlgebraic(%v) = %q, want %q", tt.sq, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			sq := Square{Rank: r, File: f}
			name := sq.Algebraic()
			back, ok := FromAlgebraic(name)
			if !ok || back != sq {
				t.Errorf("round trip of %v via %q gave %v (ok=%v)", sq, name, back, ok)
			}
			if back.Algebraic() != name {
				t.Errorf("round trip of %q gave %q", name, back.Algebraic())
			}
		}
	}
}

func TestParseUCI(t *testing.T) {
	from, to, promo, ok := ParseUCI("e7e8q")
	if !ok {
		t.Fatal("ParseUCI(e7e8q) not ok")
	}
	if from != (Square{1, 4}) || to != (Square{0, 4}) || promo != 'q' {
		t.Errorf("ParseUCI(e7e8q) = %v %v %c", from, to, promo)
	}

	for _, bad := range []string{"", "e2", "e2e9", "e7e8k", "e2e4e5"} {
		if _, _, _, ok := ParseUCI(bad); ok {
			t.Errorf("ParseUCI(%q) accepted", bad)
		}
	}

	if got := UCI(Square{6, 4}, Square{4, 4}); got != "e2e4" {
		t.Errorf("UCI() = %q, want e2e4", got)
	}
}
