package cli

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

var testTime = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	mu sync.Mutex

	session  *domain.SearchSession
	sessions []domain.SearchSession
	events   []domain.SourceEvent
	updates  []domain.Notification
	closed   bool
	err      error

	submittedQuery string
	submittedGrade domain.GradeFilter
	submittedUser  string
}

func (m *mockSearchService) Submit(
	_ context.Context, userID, query string, grade domain.GradeFilter,
) (*domain.SearchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submittedUser, m.submittedQuery, m.submittedGrade = userID, query, grade
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SearchSession{ID: "s1", UserID: userID, Query: query, Grade: grade, Status: domain.SessionPending}, nil
}

func (m *mockSearchService) Session(_ context.Context, _, _ string) (*domain.SearchSession, error) {
	return m.session, m.err
}

func (m *mockSearchService) Events(_ context.Context, _, _ string) ([]domain.SourceEvent, error) {
	return m.events, m.err
}

func (m *mockSearchService) Sessions(_ context.Context, _ string, _ int) ([]domain.SearchSession, error) {
	return m.sessions, m.err
}

// Watch returns the configured snapshot with the queued updates buffered.
func (m *mockSearchService) Watch(_ context.Context, _, _ string) (*driving.SessionWatch, error) {
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan domain.Notification, len(m.updates))
	for _, n := range m.updates {
		ch <- n
	}
	if m.closed {
		close(ch)
	}
	return &driving.SessionWatch{
		Session: m.session,
		Events:  m.events,
		Updates: ch,
		Cancel:  func() {},
	}, nil
}

func (m *mockSearchService) Connectors() []domain.ConnectorInfo {
	return []domain.ConnectorInfo{{Name: "khanacademy", Class: domain.ClassParallel}}
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
}

func (m *mockScheduler) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	return nil
}

func (m *mockScheduler) Submit(_ string) error { return nil }

func (m *mockScheduler) Stop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockScheduler) Stats() domain.SchedulerStats { return domain.SchedulerStats{} }

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	llmErr      error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) AddToken(token, userID string) error {
	if m.settings.Server.Tokens == nil {
		m.settings.Server.Tokens = map[string]string{}
	}
	m.settings.Server.Tokens[token] = userID
	return nil
}

func (m *mockSettingsService) RemoveToken(token string) error {
	if _, ok := m.settings.Server.Tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(m.settings.Server.Tokens, token)
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.llmErr }

// testEnv swaps the runtime and settings factories for mocks.
type testEnv struct {
	search    *mockSearchService
	scheduler *mockScheduler
	settings  *mockSettingsService
	opts      []runtimeOptions
	out       *bytes.Buffer
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		search:    &mockSearchService{},
		scheduler: &mockScheduler{},
		settings:  newMockSettingsService(),
		out:       new(bytes.Buffer),
	}

	oldRuntime, oldSettings, oldTerminal := openRuntime, openSettings, isTerminal
	openRuntime = func(_ context.Context, opts runtimeOptions) (*Runtime, error) {
		env.opts = append(env.opts, opts)
		app := env.settings.settings
		return &Runtime{
			Settings:    env.settings,
			AppSettings: &app,
			Search:      env.search,
			Scheduler:   env.scheduler,
			Recover:     func(context.Context) (int, error) { return 0, nil },
		}, nil
	}
	openSettings = func() (driving.SettingsService, error) { return env.settings, nil }
	isTerminal = func(io.Writer) bool { return false }

	rootCmd.SetOut(env.out)
	rootCmd.SetErr(env.out)

	t.Cleanup(func() {
		openRuntime, openSettings, isTerminal = oldRuntime, oldSettings, oldTerminal
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		searchGrade, searchWatch, searchJSON = "", false, false
		statusJSON, statusEvents, statusLimit = false, false, 10
		userID = DefaultUser
	})
	return env
}

// run executes the root command with args.
func (e *testEnv) run(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
