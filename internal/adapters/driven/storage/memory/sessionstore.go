package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.SearchSession
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.SearchSession),
	}
}

// Create stores a new pending session.
func (s *SessionStore) Create(_ context.Context, session *domain.SearchSession) error {
	if session.Status != domain.SessionPending {
		return fmt.Errorf("%w: new session must be pending, got %s", domain.ErrInvalidTransition, session.Status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.sessions[session.ID] = clone(*session)
	return nil
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.SearchSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clone(session)
	return &out, nil
}

// ListByStatus returns sessions in a status, oldest first.
func (s *SessionStore) ListByStatus(_ context.Context, status domain.SessionStatus) ([]domain.SearchSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SearchSession, 0)
	for _, session := range s.sessions {
		if session.Status == status {
			result = append(result, clone(session))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ListByUser returns a user's sessions, most recent first.
func (s *SessionStore) ListByUser(_ context.Context, userID string, limit int) ([]domain.SearchSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SearchSession, 0)
	for _, session := range s.sessions {
		if session.UserID == userID {
			result = append(result, clone(session))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Transition moves a session to a non-completed status.
func (s *SessionStore) Transition(
	_ context.Context,
	id string,
	to domain.SessionStatus,
	at time.Time,
) (*domain.SearchSession, error) {
	if to == domain.SessionCompleted {
		return nil, fmt.Errorf("%w: use Complete to finish a session", domain.ErrInvalidTransition)
	}
	return s.update(id, to, at, nil)
}

// Complete stores the result and moves the session to completed.
func (s *SessionStore) Complete(
	_ context.Context,
	id string,
	result []domain.ResultItem,
	at time.Time,
) (*domain.SearchSession, error) {
	if result == nil {
		result = []domain.ResultItem{}
	}
	return s.update(id, domain.SessionCompleted, at, result)
}

func (s *SessionStore) update(
	id string,
	to domain.SessionStatus,
	at time.Time,
	result []domain.ResultItem,
) (*domain.SearchSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := domain.CheckTransition(session.Status, to); err != nil {
		return nil, err
	}
	session.Status = to
	session.UpdatedAt = at
	if result != nil {
		session.Result = append([]domain.ResultItem{}, result...)
	}
	s.sessions[id] = session
	out := clone(session)
	return &out, nil
}

func clone(session domain.SearchSession) domain.SearchSession {
	if session.Result != nil {
		session.Result = append([]domain.ResultItem{}, session.Result...)
	}
	return session
}
