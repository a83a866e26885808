package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	mu sync.Mutex

	submitErr error
	submitted []submitCall

	session    *domain.SearchSession
	sessionErr error
	events     []domain.SourceEvent
	eventsErr  error

	updates  chan domain.Notification
	watchErr error
	canceled bool

	connectors []domain.ConnectorInfo
}

type submitCall struct {
	userID string
	query  string
	grade  domain.GradeFilter
}

func (m *mockSearchService) Submit(
	_ context.Context,
	userID, query string,
	grade domain.GradeFilter,
) (*domain.SearchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, submitCall{userID: userID, query: query, grade: grade})
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return &domain.SearchSession{
		ID:        "sess-1",
		UserID:    userID,
		Query:     query,
		Grade:     grade,
		Status:    domain.SessionPending,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockSearchService) Session(_ context.Context, _, _ string) (*domain.SearchSession, error) {
	return m.session, m.sessionErr
}

func (m *mockSearchService) Events(_ context.Context, _, _ string) ([]domain.SourceEvent, error) {
	return m.events, m.eventsErr
}

func (m *mockSearchService) Sessions(_ context.Context, _ string, _ int) ([]domain.SearchSession, error) {
	return nil, nil
}

func (m *mockSearchService) Watch(_ context.Context, _, _ string) (*driving.SessionWatch, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	return &driving.SessionWatch{
		Session: m.session,
		Events:  m.events,
		Updates: m.updates,
		Cancel: func() {
			m.mu.Lock()
			m.canceled = true
			m.mu.Unlock()
		},
	}, nil
}

func (m *mockSearchService) Connectors() []domain.ConnectorInfo {
	return m.connectors
}

func (m *mockSearchService) calls() []submitCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]submitCall(nil), m.submitted...)
}

func (m *mockSearchService) wasCanceled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canceled
}

// mockScheduler is a mock implementation of driving.Scheduler.
type mockScheduler struct {
	stats domain.SchedulerStats
}

func (m *mockScheduler) Start(_ context.Context) error { return nil }
func (m *mockScheduler) Submit(_ string) error         { return nil }
func (m *mockScheduler) Stop(_ context.Context) error  { return nil }
func (m *mockScheduler) Stats() domain.SchedulerStats  { return m.stats }
