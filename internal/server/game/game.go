package game

import (
	"errors"
	"fmt"
	"time"

	"chess/internal/server/board"
	"chess/internal/server/core"
	"chess/internal/server/engine"
	"chess/internal/server/notation"
)

var errMissingKing = errors.New("position must have one king per side")

// Snapshot is a position together with the move that produced it
type Snapshot struct {
	Position board.Position `json:"position"`
	Move     *MoveRecord    `json:"move,omitempty"` // nil for the starting position
}

// Session is the state of one conversational game. It is not safe for
// concurrent use; the service serializes access.
type Session struct {
	id         string
	snapshots  []Snapshot
	mode       core.Mode
	userColor  core.Color
	difficulty core.Difficulty
	status     Status
	startTime  time.Time
	lastActive time.Time

	// Moves offered by the last "which one?" question
	pending []engine.Candidate
}

func New(id string, start board.Position, now time.Time) *Session {
	s := &Session{
		id:         id,
		snapshots:  []Snapshot{{Position: start}},
		mode:       core.ModeChooseColor,
		startTime:  now,
		lastActive: now,
	}
	s.status = Evaluate(start)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// CurrentSnapshot returns the latest game snapshot
func (s *Session) CurrentSnapshot() Snapshot {
	return s.snapshots[len(s.snapshots)-1]
}

// Position returns the current position by value
func (s *Session) Position() board.Position {
	return s.CurrentSnapshot().Position
}

// FEN returns the current position in FEN notation
func (s *Session) FEN() string {
	return s.Position().FEN()
}

func (s *Session) InitialFEN() string {
	return s.snapshots[0].Position.FEN()
}

func (s *Session) Turn() core.Color {
	return s.Position().Turn
}

func (s *Session) Mode() core.Mode {
	return s.mode
}

func (s *Session) SetMode(m core.Mode) {
	s.mode = m
}

func (s *Session) UserColor() core.Color {
	return s.userColor
}

func (s *Session) SetUserColor(c core.Color) {
	s.userColor = c
}

func (s *Session) Difficulty() core.Difficulty {
	return s.difficulty
}

func (s *Session) SetDifficulty(d core.Difficulty) {
	s.difficulty = d
}

func (s *Session) Status() Status {
	return s.status
}

func (s *Session) State() core.State {
	return s.status.State
}

func (s *Session) StartTime() time.Time {
	return s.startTime
}

func (s *Session) LastActivity() time.Time {
	return s.lastActive
}

// Touch records user activity
func (s *Session) Touch(now time.Time) {
	s.lastActive = now
}

// TurnMode is the playing mode for whoever is to move
func (s *Session) TurnMode() core.Mode {
	if s.status.State != core.StateOngoing {
		return core.ModeGameOver
	}
	if s.Turn() == s.userColor {
		return core.ModeUserTurn
	}
	return core.ModeOpponentTurn
}

// ApplyMove plays a candidate the caller has already checked with
// engine.LegalMoves. Only ownership of the moving piece is verified here.
func (s *Session) ApplyMove(c engine.Candidate) (MoveRecord, error) {
	if s.status.State != core.StateOngoing {
		return MoveRecord{}, fmt.Errorf("game is over: %s", s.status.State)
	}
	pos := s.Position()
	if !c.Source.Valid() || !c.Target.Valid() {
		return MoveRecord{}, fmt.Errorf("move off the board: %v", c)
	}
	owner, ok := board.ColorOf(pos.Board.At(c.Source))
	if !ok {
		return MoveRecord{}, fmt.Errorf("no piece on %s", c.Source)
	}
	if owner != pos.Turn {
		return MoveRecord{}, fmt.Errorf("piece on %s does not belong to side to move", c.Source)
	}

	next, record := NextPosition(pos, c)
	s.snapshots = append(s.snapshots, Snapshot{Position: next, Move: &record})
	s.pending = nil
	s.status = Evaluate(next)
	if s.mode == core.ModeUserTurn || s.mode == core.ModeOpponentTurn {
		s.mode = s.TurnMode()
	}
	return record, nil
}

func (s *Session) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	availableMoves := len(s.snapshots) - 1
	if availableMoves < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, availableMoves)
	}

	s.snapshots = s.snapshots[:len(s.snapshots)-count]
	s.pending = nil
	s.status = Evaluate(s.Position())
	if s.mode == core.ModeUserTurn || s.mode == core.ModeOpponentTurn || s.mode == core.ModeGameOver {
		s.mode = s.TurnMode()
	}
	return nil
}

// SetPending remembers the moves the user was asked to choose between
func (s *Session) SetPending(candidates []engine.Candidate) {
	s.pending = append([]engine.Candidate(nil), candidates...)
}

// Pending returns the moves of an open "which one?" question
func (s *Session) Pending() []engine.Candidate {
	return s.pending
}

// ClearPending drops an open "which one?" question
func (s *Session) ClearPending() {
	s.pending = nil
}

// ChoosePending picks the pending move starting on source
func (s *Session) ChoosePending(source notation.Square) (engine.Candidate, bool) {
	for _, c := range s.pending {
		if c.Source == source {
			return c, true
		}
	}
	return engine.Candidate{}, false
}

// History returns every applied move, oldest first
func (s *Session) History() []MoveRecord {
	moves := []MoveRecord{}
	for i := 1; i < len(s.snapshots); i++ {
		if s.snapshots[i].Move != nil {
			moves = append(moves, *s.snapshots[i].Move)
		}
	}
	return moves
}

// Moves returns the move history in coordinate form
func (s *Session) Moves() []string {
	moves := []string{}
	for _, m := range s.History() {
		moves = append(moves, m.UCI)
	}
	return moves
}

func (s *Session) LastMove() *MoveRecord {
	return s.CurrentSnapshot().Move
}

// CapturedBy lists the pieces color has taken, in capture order
func (s *Session) CapturedBy(color core.Color) []string {
	captured := []string{}
	for _, m := range s.History() {
		if m.Color == color && !board.IsEmpty(m.Captured) {
			captured = append(captured, string(m.Captured))
		}
	}
	return captured
}
