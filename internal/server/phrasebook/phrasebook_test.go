package phrasebook

import (
	"context"
	"testing"

	"chess/internal/server/core"
	"chess/internal/server/transcript"

	"github.com/google/go-cmp/cmp"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLearnAndResolve(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Learn("Grandmaster", core.DifficultyHard); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}
	if err := s.Learn("take it  slow", core.DifficultyEasy); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}

	d, ok, err := s.Resolve(ctx, "GRANDMASTER")
	if err != nil || !ok || d != core.DifficultyHard {
		t.Errorf("Resolve(GRANDMASTER) = %v, %v, %v", d, ok, err)
	}
	d, ok, err = s.Resolve(ctx, "take it slow")
	if err != nil || !ok || d != core.DifficultyEasy {
		t.Errorf("Resolve(take it slow) = %v, %v, %v", d, ok, err)
	}
	if _, ok, err := s.Resolve(ctx, "expert"); ok || err != nil {
		t.Errorf("Resolve(expert) = %v, %v", ok, err)
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := map[string]core.Difficulty{
		"grandmaster":  core.DifficultyHard,
		"take it slow": core.DifficultyEasy,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	if err := s.Forget("grandmaster"); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	if _, ok, _ := s.Resolve(ctx, "grandmaster"); ok {
		t.Error("Resolve() found a forgotten phrase")
	}
}

func TestLearnRejects(t *testing.T) {
	s := newStore(t)

	if err := s.Learn("easy", core.DifficultyHard); err == nil {
		t.Error("Learn() redefined a built-in word")
	}
	if err := s.Learn("  ", core.DifficultyHard); err == nil {
		t.Error("Learn() accepted an empty phrase")
	}
	if err := s.Learn("expert", core.Difficulty(9)); err == nil {
		t.Error("Learn() accepted an invalid difficulty")
	}
}

func TestParserUsesStore(t *testing.T) {
	s := newStore(t)
	if err := s.Learn("expert", core.DifficultyHard); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}

	p := transcript.NewDifficultyParser(s)
	if d, ok := p.Parse(context.Background(), "Expert"); !ok || d != core.DifficultyHard {
		t.Errorf("Parse(Expert) = %v, %v", d, ok)
	}
	if _, ok := p.Parse(context.Background(), "impossible"); ok {
		t.Error("Parse(impossible) found a difficulty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := s.Resolve(ctx, "expert"); err == nil {
		t.Error("Resolve() ignored a cancelled context")
	}
}
