package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	mu sync.Mutex

	session    *domain.SearchSession
	sessions   []domain.SearchSession
	events     []domain.SourceEvent
	connectors []domain.ConnectorInfo
	err        error

	lastUser  string
	lastQuery string
	lastGrade domain.GradeFilter
}

func (m *mockSearchService) Submit(
	_ context.Context,
	userID, query string,
	grade domain.GradeFilter,
) (*domain.SearchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUser, m.lastQuery, m.lastGrade = userID, query, grade
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SearchSession{
		ID:     "sess-1",
		UserID: userID,
		Query:  query,
		Grade:  grade,
		Status: domain.SessionPending,
	}, nil
}

func (m *mockSearchService) Session(_ context.Context, userID, _ string) (*domain.SearchSession, error) {
	m.mu.Lock()
	m.lastUser = userID
	m.mu.Unlock()
	return m.session, m.err
}

func (m *mockSearchService) Events(_ context.Context, userID, _ string) ([]domain.SourceEvent, error) {
	m.mu.Lock()
	m.lastUser = userID
	m.mu.Unlock()
	return m.events, m.err
}

func (m *mockSearchService) Sessions(_ context.Context, userID string, _ int) ([]domain.SearchSession, error) {
	m.mu.Lock()
	m.lastUser = userID
	m.mu.Unlock()
	return m.sessions, m.err
}

func (m *mockSearchService) Watch(_ context.Context, _, _ string) (*driving.SessionWatch, error) {
	return nil, m.err
}

func (m *mockSearchService) Connectors() []domain.ConnectorInfo {
	return m.connectors
}
