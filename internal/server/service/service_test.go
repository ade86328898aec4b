package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"chess/internal/server/board"
	"chess/internal/server/core"
	"chess/internal/server/engine"
	"chess/internal/server/game"
	"chess/internal/server/notation"
	"chess/internal/server/storage"

	"github.com/google/go-cmp/cmp"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func move(t *testing.T, uci string) engine.Candidate {
	t.Helper()
	from, to, _, ok := notation.ParseUCI(uci)
	if !ok {
		t.Fatalf("bad move %q", uci)
	}
	return engine.Candidate{Source: from, Target: to}
}

func TestCreateViewDelete(t *testing.T) {
	svc := New(nil, testSecret)

	id, err := svc.CreateSession(board.InitialPosition())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if svc.SessionCount() != 1 {
		t.Fatalf("SessionCount = %d, want 1", svc.SessionCount())
	}

	var fen string
	var mode core.Mode
	if err := svc.View(id, func(s *game.Session) {
		fen = s.FEN()
		mode = s.Mode()
	}); err != nil {
		t.Fatalf("View: %v", err)
	}
	if fen != board.StartingFEN {
		t.Errorf("FEN = %q, want %q", fen, board.StartingFEN)
	}
	if mode != core.ModeChooseColor {
		t.Errorf("mode = %v, want %v", mode, core.ModeChooseColor)
	}

	if err := svc.DeleteSession(id); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	err = svc.View(id, func(*game.Session) {})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("View after delete: got %v, want ErrSessionNotFound", err)
	}
	if err := svc.DeleteSession(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second delete: got %v, want ErrSessionNotFound", err)
	}
}

func TestUpdatePropagatesError(t *testing.T) {
	svc := New(nil, testSecret)
	id, _ := svc.CreateSession(board.InitialPosition())

	boom := errors.New("boom")
	if err := svc.Update(id, func(*game.Session) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Update: got %v, want %v", err, boom)
	}
	if err := svc.Update("missing", func(*game.Session) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Update unknown session: got %v", err)
	}
}

func TestSessionToken(t *testing.T) {
	svc := New(nil, testSecret)
	token, err := svc.GenerateSessionToken("abc")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	subject, claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if subject != "abc" {
		t.Errorf("subject = %q, want abc", subject)
	}
	if claims["scope"] != "session" {
		t.Errorf("scope claim = %v", claims["scope"])
	}

	other := New(nil, []byte("another-secret-another-secret-00"))
	if _, _, err := other.ValidateToken(token); err == nil {
		t.Error("token accepted under a different secret")
	}
}

func TestCleanupIdle(t *testing.T) {
	svc := New(nil, testSecret)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	stale, _ := svc.CreateSession(board.InitialPosition())
	clock = clock.Add(SessionIdleTTL)
	fresh, _ := svc.CreateSession(board.InitialPosition())
	clock = clock.Add(time.Minute)

	if n := svc.cleanupIdle(); n != 1 {
		t.Fatalf("cleanupIdle evicted %d, want 1", n)
	}
	if err := svc.View(stale, func(*game.Session) {}); !errors.Is(err, ErrSessionNotFound) {
		t.Error("stale session survived cleanup")
	}
	if err := svc.View(fresh, func(*game.Session) {}); err != nil {
		t.Errorf("fresh session evicted: %v", err)
	}
}

func TestSessionLimit(t *testing.T) {
	svc := New(nil, testSecret)
	for i := 0; i < MaxSessions; i++ {
		if _, err := svc.CreateSession(board.InitialPosition()); err != nil {
			t.Fatalf("session %d: %v", i, err)
		}
	}
	if _, err := svc.CreateSession(board.InitialPosition()); !errors.Is(err, ErrSessionLimit) {
		t.Errorf("got %v, want ErrSessionLimit", err)
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svc.db")
	store, err := storage.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatal(err)
	}

	svc := New(store, testSecret)
	id, err := svc.CreateSession(board.InitialPosition())
	if err != nil {
		t.Fatal(err)
	}

	err = svc.Update(id, func(s *game.Session) error {
		s.SetUserColor(core.ColorWhite)
		s.SetDifficulty(core.DifficultyHard)
		s.SetMode(s.TurnMode())
		for _, uci := range []string{"e2e4", "e7e5", "g1f3"} {
			if _, err := s.ApplyMove(move(t, uci)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Undo one and play a different move in the same update
	err = svc.Update(id, func(s *game.Session) error {
		if err := s.UndoMoves(1); err != nil {
			return err
		}
		_, err := s.ApplyMove(move(t, "b1c3"))
		return err
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := svc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	store, err = storage.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	sessions, err := store.QuerySessions(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].UserColor != "w" || sessions[0].Difficulty != "hard" {
		t.Errorf("stored session = %+v", sessions)
	}

	moves, err := store.QueryMoves(id)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, m := range moves {
		got = append(got, m.MoveUCI)
	}
	if diff := cmp.Diff([]string{"e2e4", "e7e5", "b1c3"}, got); diff != "" {
		t.Errorf("stored moves mismatch (-want +got):\n%s", diff)
	}
	if moves[2].Description != "knight b1 to c3" {
		t.Errorf("description = %q", moves[2].Description)
	}
}
