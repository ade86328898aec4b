package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return s
}

func TestSessionAndMoveLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chesstalk.db")
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s := openTestStore(t, path)
	mustNil(t, s.RecordNewSession(SessionRecord{
		SessionID:    "s1",
		InitialFEN:   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		UserColor:    "-",
		Difficulty:   "unset",
		StartTimeUTC: start,
	}))
	mustNil(t, s.UpdateSessionChoices("s1", "w", "easy"))
	for i, uci := range []string{"e2e4", "e7e5", "g1f3"} {
		color := "w"
		if i%2 == 1 {
			color = "b"
		}
		mustNil(t, s.RecordMove(moveRecord("s1", i+1, uci, color, start)))
	}
	mustNil(t, s.DeleteUndoneMoves("s1", 2))

	// Close drains the write queue
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s = openTestStore(t, path)
	defer s.Close()

	if !s.IsHealthy() {
		t.Fatal("store reported unhealthy")
	}

	sessions, err := s.QuerySessions("*")
	if err != nil {
		t.Fatalf("QuerySessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	got := sessions[0]
	if got.UserColor != "w" || got.Difficulty != "easy" {
		t.Errorf("choices not stored: color=%q difficulty=%q", got.UserColor, got.Difficulty)
	}

	moves, err := s.QueryMoves("s1")
	if err != nil {
		t.Fatalf("QueryMoves: %v", err)
	}
	var ucis []string
	for _, m := range moves {
		ucis = append(ucis, m.MoveUCI)
	}
	if diff := cmp.Diff([]string{"e2e4", "e7e5"}, ucis); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascade.db")
	now := time.Now().UTC()

	s := openTestStore(t, path)
	mustNil(t, s.RecordNewSession(SessionRecord{SessionID: "gone", InitialFEN: "x", UserColor: "-", Difficulty: "unset", StartTimeUTC: now}))
	mustNil(t, s.RecordNewSession(SessionRecord{SessionID: "kept", InitialFEN: "y", UserColor: "b", Difficulty: "hard", StartTimeUTC: now}))
	mustNil(t, s.RecordMove(moveRecord("gone", 1, "e2e4", "w", now)))
	mustNil(t, s.DeleteSession("gone"))
	mustNil(t, s.Close())

	s = openTestStore(t, path)
	defer s.Close()

	sessions, err := s.QuerySessions("")
	if err != nil {
		t.Fatalf("QuerySessions: %v", err)
	}
	want := []SessionRecord{{SessionID: "kept", InitialFEN: "y", UserColor: "b", Difficulty: "hard"}}
	if diff := cmp.Diff(want, sessions, cmpopts.IgnoreFields(SessionRecord{}, "StartTimeUTC")); diff != "" {
		t.Errorf("sessions mismatch (-want +got):\n%s", diff)
	}

	moves, err := s.QueryMoves("gone")
	if err != nil {
		t.Fatalf("QueryMoves: %v", err)
	}
	if len(moves) != 0 {
		t.Errorf("moves of deleted session survived: %v", moves)
	}
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delete.db")
	s := openTestStore(t, path)
	if err := s.DeleteDB(); err != nil {
		t.Fatalf("DeleteDB: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("database file still present: %v", err)
	}
}

func moveRecord(sessionID string, ply int, uci, color string, at time.Time) MoveRecord {
	return MoveRecord{
		SessionID:    sessionID,
		Ply:          ply,
		MoveUCI:      uci,
		FENAfterMove: "fen",
		PlayerColor:  color,
		MoveTimeUTC:  at,
	}
}

func mustNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestFailedWriteDegradesStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "degraded.db")
	now := time.Now().UTC()

	s := openTestStore(t, path)
	// No such session: the foreign key rejects the move
	mustNil(t, s.RecordMove(moveRecord("missing", 1, "e2e4", "w", now)))
	mustNil(t, s.Close())

	if s.IsHealthy() {
		t.Fatal("store still healthy after a rejected write")
	}
	mustNil(t, s.RecordNewSession(SessionRecord{SessionID: "late", InitialFEN: "x", UserColor: "-", Difficulty: "unset", StartTimeUTC: now}))
	if got := s.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}

	s = openTestStore(t, path)
	defer s.Close()
	sessions, err := s.QuerySessions("*")
	if err != nil {
		t.Fatalf("QuerySessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("write after degradation was stored: %+v", sessions)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "close.db"))
	mustNil(t, s.Close())
	mustNil(t, s.Close())
}
