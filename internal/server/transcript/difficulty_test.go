package transcript

import (
	"context"
	"errors"
	"testing"

	"chess/internal/server/core"
)

type mapResolver struct {
	phrases map[string]core.Difficulty
	err     error
	calls   []string
}

func (m *mapResolver) Resolve(ctx context.Context, phrase string) (core.Difficulty, bool, error) {
	m.calls = append(m.calls, phrase)
	if m.err != nil {
		return 0, false, m.err
	}
	d, ok := m.phrases[phrase]
	return d, ok, nil
}

func TestParseDifficulty(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		input string
		want  core.Difficulty
	}{
		{"easy", core.DifficultyEasy},
		{"medium", core.DifficultyMedium},
		{"hard", core.DifficultyHard},
		{"beginner", core.DifficultyEasy},
		{"advanced", core.DifficultyHard},
		{"Make it HARD", core.DifficultyHard},
	}
	for _, tt := range tests {
		got, ok := ParseDifficulty(ctx, tt.input)
		if !ok || got != tt.want {
			t.Errorf("ParseDifficulty(%q) = %v, %v; want %v", tt.input, got, ok, tt.want)
		}
	}

	for _, input := range []string{"invalid", "", "expert"} {
		if got, ok := ParseDifficulty(ctx, input); ok {
			t.Errorf("ParseDifficulty(%q) = %v, want not found", input, got)
		}
	}
}

func TestDifficultyParserResolver(t *testing.T) {
	ctx := context.Background()
	r := &mapResolver{phrases: map[string]core.Difficulty{
		"grandmaster":   core.DifficultyHard,
		"go easy on me": core.DifficultyEasy,
	}}
	p := NewDifficultyParser(r)

	if d, ok := p.Parse(ctx, "Grandmaster"); !ok || d != core.DifficultyHard {
		t.Errorf("Parse(Grandmaster) = %v, %v", d, ok)
	}
	if d, ok := p.Parse(ctx, "go easy on me"); !ok || d != core.DifficultyEasy {
		t.Errorf("Parse(go easy on me) = %v, %v", d, ok)
	}
	if _, ok := p.Parse(ctx, "expert"); ok {
		t.Error("Parse(expert) found without a synonym")
	}

	// Built-in words never reach the resolver
	r.calls = nil
	if d, ok := p.Parse(ctx, "medium"); !ok || d != core.DifficultyMedium {
		t.Errorf("Parse(medium) = %v, %v", d, ok)
	}
	if len(r.calls) != 0 {
		t.Errorf("resolver called for built-in word: %v", r.calls)
	}
}

func TestDifficultyParserFailsSoftly(t *testing.T) {
	p := NewDifficultyParser(&mapResolver{err: errors.New("service down")})
	if _, ok := p.Parse(context.Background(), "expert"); ok {
		t.Error("Parse() found a difficulty while the resolver failed")
	}
	if d, ok := p.Parse(context.Background(), "beginner"); !ok || d != core.DifficultyEasy {
		t.Errorf("Parse(beginner) = %v, %v with failing resolver", d, ok)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &mapResolver{phrases: map[string]core.Difficulty{"expert": core.DifficultyHard}}
	if _, ok := NewDifficultyParser(r).Parse(ctx, "expert"); ok {
		t.Error("Parse() resolved after the context was cancelled")
	}
	if len(r.calls) != 0 {
		t.Errorf("resolver called with cancelled context: %v", r.calls)
	}
}
