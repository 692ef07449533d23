package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for an unknown or expired success session.
var ErrSessionNotFound = errors.New("success session not found")

// SuccessSession holds the modal shown to one visitor after they entered.
type SuccessSession struct {
	ID            string
	ParticipantID string
	Prize         string
	// ContinueURL is where the visitor goes once the modal closes.
	ContinueURL  string
	Countdown    *Countdown
	LastActivity time.Time
}

// SuccessModals manages the open success sessions.
type SuccessModals struct {
	mu       sync.RWMutex
	sessions map[string]*SuccessSession // Key: session ID
	delay    time.Duration
}

// NewSuccessModals creates a registry whose modals close after delay.
func NewSuccessModals(delay time.Duration) *SuccessModals {
	if delay <= 0 {
		delay = DefaultModalDelay
	}
	return &SuccessModals{
		sessions: make(map[string]*SuccessSession),
		delay:    delay,
	}
}

// Open starts a new countdown for a participant.
func (s *SuccessModals) Open(participantID, prize, continueURL string) *SuccessSession {
	session := &SuccessSession{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		Prize:         prize,
		ContinueURL:   continueURL,
		LastActivity:  time.Now(),
	}
	session.Countdown = NewCountdown(s.delay, func(trigger string) {
		logger.Infof("Success modal %s continued (%s)", session.ID, trigger)
	})

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

// Get returns a session and marks it active.
func (s *SuccessModals) Get(id string) (*SuccessSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	session.LastActivity = time.Now()
	return session, nil
}

// Continue closes the modal of a session right away.
func (s *SuccessModals) Continue(id string) (*SuccessSession, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	session.Countdown.Continue()
	return session, nil
}

// Close tears a session down, cancelling its timer.
func (s *SuccessModals) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, exists := s.sessions[id]; exists {
		session.Countdown.Stop()
		delete(s.sessions, id)
	}
}

// Delay is how long a modal stays open on its own.
func (s *SuccessModals) Delay() time.Duration {
	return s.delay
}

// Len returns the number of open sessions.
func (s *SuccessModals) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanUpInactive removes sessions idle for longer than maxAge and returns how many went.
func (s *SuccessModals) CleanUpInactive(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if time.Since(session.LastActivity) > maxAge {
			session.Countdown.Stop()
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		logger.Infof("Removed %d inactive success sessions", removed)
	}
	return removed
}
