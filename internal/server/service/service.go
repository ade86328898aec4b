package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chess/internal/server/board"
	"chess/internal/server/game"
	"chess/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

const (
	MaxSessions        = 1000
	SessionIdleTTL     = 2 * time.Hour
	SessionTokenTTL    = 24 * time.Hour
	CleanupJobInterval = 10 * time.Minute
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
)

// Service owns the live sessions, their persistence and session tokens
type Service struct {
	sessions  map[string]*game.Session
	mu        sync.RWMutex
	store     *storage.Store
	jwtSecret []byte
	now       func() time.Time
}

// New creates a new service instance with optional storage
func New(store *storage.Store, jwtSecret []byte) *Service {
	return &Service{
		sessions:  make(map[string]*game.Session),
		store:     store,
		jwtSecret: jwtSecret,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// SessionCount returns the number of live sessions
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CreateSession registers a new session starting from start and returns its ID
func (s *Service) CreateSession(start board.Position) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= MaxSessions {
		return "", ErrSessionLimit
	}

	id := uuid.New().String()
	for _, exists := s.sessions[id]; exists; _, exists = s.sessions[id] {
		id = uuid.New().String()
	}

	now := s.now()
	sess := game.New(id, start, now)
	s.sessions[id] = sess

	if s.store != nil {
		s.store.RecordNewSession(storage.SessionRecord{
			SessionID:    id,
			InitialFEN:   sess.InitialFEN(),
			UserColor:    sess.UserColor().String(),
			Difficulty:   sess.Difficulty().String(),
			StartTimeUTC: now,
		})
	}

	return id, nil
}

// View runs fn with read access to a session
func (s *Service) View(sessionID string, fn func(*game.Session)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	fn(sess)
	return nil
}

// Update runs fn with exclusive access to a session, marks it active and
// persists whatever fn changed: chosen color and difficulty, played moves
// and undone moves.
func (s *Service) Update(sessionID string, fn func(*game.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	color, difficulty := sess.UserColor(), sess.Difficulty()
	before := sess.History()

	err := fn(sess)
	sess.Touch(s.now())

	if s.store != nil {
		s.persistChanges(sess, before, color != sess.UserColor() || difficulty != sess.Difficulty())
	}
	return err
}

// persistChanges compares the history fn started from with the current one
func (s *Service) persistChanges(sess *game.Session, before []game.MoveRecord, choicesChanged bool) {
	id := sess.ID()
	if choicesChanged {
		s.store.UpdateSessionChoices(id, sess.UserColor().String(), sess.Difficulty().String())
	}

	after := sess.History()

	// Length of the common prefix of both histories
	common := 0
	for common < len(before) && common < len(after) && before[common] == after[common] {
		common++
	}

	if common < len(before) {
		s.store.DeleteUndoneMoves(id, common)
	}
	for i := common; i < len(after); i++ {
		m := after[i]
		s.store.RecordMove(storage.MoveRecord{
			SessionID:    id,
			Ply:          i + 1,
			MoveUCI:      m.UCI,
			Description:  m.Describe(),
			Captured:     capturedName(m.Captured),
			FENAfterMove: m.FENAfter,
			PlayerColor:  m.Color.String(),
			MoveTimeUTC:  s.now(),
		})
	}
}

func capturedName(p byte) string {
	if board.IsEmpty(p) {
		return ""
	}
	return string(p)
}

// DeleteSession removes a session from memory and storage
func (s *Service) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	delete(s.sessions, sessionID)

	if s.store != nil {
		s.store.DeleteSession(sessionID)
	}
	return nil
}

// GenerateSessionToken creates a JWT bound to one session
func (s *Service) GenerateSessionToken(sessionID string) (string, error) {
	claims := map[string]any{
		"scope": "session",
	}
	return auth.GenerateHS256Token(s.jwtSecret, sessionID, claims, SessionTokenTTL)
}

// ValidateToken verifies JWT token and returns session ID with claims
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	return auth.ValidateHS256Token(s.jwtSecret, token)
}

// Shutdown gracefully shuts down the service
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*game.Session)

	if s.store != nil {
		done := make(chan error, 1)
		go func() { done <- s.store.Close() }()
		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Errorf("storage: %w", err))
			}
		case <-time.After(timeout):
			errs = append(errs, fmt.Errorf("storage: close timed out after %v", timeout))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob runs periodic eviction of idle sessions
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := s.cleanupIdle(); evicted > 0 {
				log.Printf("cleanup: evicted %d idle sessions", evicted)
			}
		}
	}
}

// cleanupIdle drops sessions from memory; their stored records remain for the admin CLI
func (s *Service) cleanupIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-SessionIdleTTL)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.LastActivity().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
