// Package session holds the client-side state of one REPL run.
package session

import (
	"chess/internal/client/api"
	"chess/internal/server/core"
)

type Session struct {
	APIBaseURL string
	Client     *api.Client
	Verbose    bool

	// Current conversation; Token authorizes changes to it
	SessionID string
	Token     string
	State     *core.SessionResponse
}

// Join switches the REPL to another session
func (s *Session) Join(id, token string) {
	s.SessionID = id
	s.Token = token
	s.State = nil
	s.Client.SetToken(token)
}

// Leave forgets the current session
func (s *Session) Leave() {
	s.Join("", "")
}

// ShortID is the first block of the session UUID, used in the prompt
func (s *Session) ShortID() string {
	if len(s.SessionID) > 8 {
		return s.SessionID[:8]
	}
	return s.SessionID
}
