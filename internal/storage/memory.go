// Package storage provides session persistence and the brew history log.
package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.SessionStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory session store. Safe for concurrent access;
// callers never share a *Session with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	log      *logger.Logger
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		log:      log,
	}
}

// Save stores a copy of session. Overwrites if it already exists.
func (s *MemoryStore) Save(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("saving session %s (%s, status=%s)", session.ID, session.Label(), session.Status)
	s.sessions[session.ID] = copySession(session)
	return nil
}

// Load returns a copy of the session with the given ID.
func (s *MemoryStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		s.log.Debug("session not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return copySession(sess), nil
}

// Update runs fn on a copy of the session under the write lock and stores
// the result only when fn succeeds.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	work := copySession(sess)
	if err := fn(work); err != nil {
		return copySession(sess), err
	}
	s.sessions[id] = work
	return copySession(work), nil
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sessions, id)
	s.log.Debug("deleted session %s", id)
	return nil
}

// ListActive returns copies of all sessions with active or paused status.
func (s *MemoryStore) ListActive(ctx context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Session
	for _, sess := range s.sessions {
		if sess.Status == domain.SessionActive || sess.Status == domain.SessionPaused {
			out = append(out, copySession(sess))
		}
	}
	return out, nil
}

func copySession(in *domain.Session) *domain.Session {
	out := *in
	out.Stages = append([]domain.Stage(nil), in.Stages...)
	out.StageStates = make(map[int]*domain.StageState, len(in.StageStates))
	for k, v := range in.StageStates {
		st := *v
		out.StageStates[k] = &st
	}
	out.TimerStates = make(map[string]*domain.TimerState, len(in.TimerStates))
	for k, v := range in.TimerStates {
		ts := *v
		out.TimerStates[k] = &ts
	}
	return &out
}
