package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Harshitk-cp/informed/internal/domain"
)

// SessionStore keeps diagnostic sessions in process memory. Sessions are
// copied on the way in and out, so callers never share state with the store
// or with each other. Nothing survives a restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*domain.Session),
		now:      time.Now,
	}
}

// Create assigns an id (when unset) and the start timestamps, then stores a
// copy of sess.
func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	now := s.now().UTC()
	sess.StartedAt = now
	sess.LastActivityAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return ErrConflict
	}
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

// Update replaces a stored session and refreshes its last activity time.
func (s *SessionStore) Update(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		return ErrNotFound
	}
	sess.LastActivityAt = s.now().UTC()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, sess := range s.sessions {
		if sess.LastActivityAt.Before(cutoff) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
