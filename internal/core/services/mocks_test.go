package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/lessonscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// --- Mock implementations for pipeline testing ---

// mockConnector implements driven.Connector with scripted behaviour.
type mockConnector struct {
	name  string
	class domain.ConcurrencyClass
	items []domain.ResultItem
	err   error
	panic any
	delay time.Duration

	// hook runs before the connector returns.
	hook func(ctx context.Context)

	mu    sync.Mutex
	calls int
}

func newMockConnector(name string, items ...domain.ResultItem) *mockConnector {
	return &mockConnector{name: name, class: domain.ClassParallel, items: items}
}

func (m *mockConnector) Name() string                     { return m.name }
func (m *mockConnector) Class() domain.ConcurrencyClass   { return m.class }
func (m *mockConnector) callCount() int                   { m.mu.Lock(); defer m.mu.Unlock(); return m.calls }
func (m *mockConnector) exclusive() *mockConnector        { m.class = domain.ClassExclusive; return m }
func (m *mockConnector) failing(err error) *mockConnector { m.err = err; return m }

func (m *mockConnector) Search(ctx context.Context, _ domain.SearchRequest) ([]domain.ResultItem, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.hook != nil {
		m.hook(ctx)
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.panic != nil {
		panic(m.panic)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

// flakyEventLog wraps the memory log and fails appends matching a predicate.
type flakyEventLog struct {
	*memory.EventLog
	failWhen func(domain.SourceEvent) bool
}

func (f *flakyEventLog) Append(ctx context.Context, e domain.SourceEvent) error {
	if f.failWhen != nil && f.failWhen(e) {
		return errors.New("disk full")
	}
	return f.EventLog.Append(ctx, e)
}

// recordingNotifier captures published notifications.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (r *recordingNotifier) Publish(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) sessionStatuses() []domain.SessionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionStatus
	for _, n := range r.sent {
		if n.Kind == domain.NotifySession {
			out = append(out, n.Session.Status)
		}
	}
	return out
}

// mockScorer implements driven.RelevanceScorer.
type mockScorer struct {
	response string
	err      error
	block    bool

	mu       sync.Mutex
	received []domain.ResultItem
	calls    int
}

func (m *mockScorer) Score(
	ctx context.Context,
	candidates []domain.ResultItem,
	_ string,
	_ domain.GradeFilter,
) (string, error) {
	m.mu.Lock()
	m.calls++
	m.received = append([]domain.ResultItem{}, candidates...)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.response, m.err
}

// failingSessionStore wraps the memory store with injectable errors.
type failingSessionStore struct {
	*memory.SessionStore
	createErr   error
	completeErr error

	// getErr is returned by the next getFailures calls to Get.
	getErr      error
	getFailures int
}

func (f *failingSessionStore) Get(ctx context.Context, id string) (*domain.SearchSession, error) {
	if f.getFailures > 0 {
		f.getFailures--
		return nil, f.getErr
	}
	return f.SessionStore.Get(ctx, id)
}

func (f *failingSessionStore) Create(ctx context.Context, s *domain.SearchSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.SessionStore.Create(ctx, s)
}

func (f *failingSessionStore) Complete(
	ctx context.Context,
	id string,
	result []domain.ResultItem,
	at time.Time,
) (*domain.SearchSession, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.SessionStore.Complete(ctx, id, result, at)
}

// inlineScheduler runs sessions synchronously on Submit.
type inlineScheduler struct {
	runner interface {
		Run(ctx context.Context, sessionID string) error
	}
	err     error
	stopped bool
}

func (s *inlineScheduler) Start(context.Context) error { return nil }
func (s *inlineScheduler) Stop(context.Context) error  { s.stopped = true; return nil }
func (s *inlineScheduler) Stats() domain.SchedulerStats {
	return domain.SchedulerStats{Accepting: !s.stopped}
}

func (s *inlineScheduler) Submit(sessionID string) error {
	if s.stopped {
		return domain.ErrSchedulerStopped
	}
	if s.err != nil {
		return s.err
	}
	_ = s.runner.Run(context.Background(), sessionID)
	return nil
}

func item(title string) domain.ResultItem {
	return domain.ResultItem{Title: title, Link: "https://example.com/" + title, Type: domain.ResultTypeLesson}
}
