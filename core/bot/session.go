// Package bot implements the conversation layer: per-user session state,
// handlers for commands, callbacks and free text, and failure classification.
package bot

import "sync"

// SessionState is the closed set of conversation states. Each variant carries
// exactly the data accumulated so far, so an impossible combination of state
// and fields cannot be constructed.
type SessionState interface {
	sessionState()
}

// Idle means no conversation is in progress.
type Idle struct{}

// AwaitingLink waits for the user to send a URL to shorten.
type AwaitingLink struct{}

// AwaitingTitle waits for a title for an already shortened link.
type AwaitingTitle struct {
	OriginalURL string
	ShortURL    string
	StatsKey    string
}

// AwaitingLinkSelection waits for the user to pick a link from the stats keyboard.
type AwaitingLinkSelection struct{}

// AwaitingRename waits for a new title for the link at LinkIndex.
type AwaitingRename struct {
	LinkIndex int
}

func (Idle) sessionState()                  {}
func (AwaitingLink) sessionState()          {}
func (AwaitingTitle) sessionState()         {}
func (AwaitingLinkSelection) sessionState() {}
func (AwaitingRename) sessionState()        {}

// Sessions tracks conversation state per user. Sessions are transient and
// lost on restart; an interrupted flow is simply started over.
type Sessions struct {
	mu     sync.RWMutex
	states map[int64]SessionState
}

// NewSessions creates an empty in-memory session manager.
func NewSessions() *Sessions {
	return &Sessions{states: make(map[int64]SessionState)}
}

// Get returns the user's current state, defaulting to Idle.
func (s *Sessions) Get(userID int64) SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[userID]; ok {
		return st
	}
	return Idle{}
}

// Set replaces the user's state.
func (s *Sessions) Set(userID int64, st SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := st.(Idle); ok {
		delete(s.states, userID)
		return
	}
	s.states[userID] = st
}

// Reset returns the user to Idle.
func (s *Sessions) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}

// InProgress reports whether the user has an active non-idle conversation.
func (s *Sessions) InProgress(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.states[userID]
	return ok
}
