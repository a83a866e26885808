package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, search *MockSearchService) *App {
	t.Helper()
	app, err := NewApp(&Ports{Search: search, UserID: "alice"}, "s1")
	require.NoError(t, err)
	return app
}

func runningWatch(updates chan domain.Notification) *driving.SessionWatch {
	return &driving.SessionWatch{
		Session: &domain.SearchSession{
			ID: "s1", Query: "volcanoes", Grade: 6, Status: domain.SessionRunning, UpdatedAt: base,
		},
		Events: []domain.SourceEvent{
			{ID: "e1", Seq: 1, SessionID: "s1", Source: "ck12", Status: domain.EventStarted},
		},
		Updates: updates,
	}
}

func testInfos() []domain.ConnectorInfo {
	return []domain.ConnectorInfo{
		{Name: "ck12", Class: domain.ClassExclusive},
		{Name: "khanacademy", Class: domain.ClassParallel},
	}
}

// open runs Init's watch command and feeds the result back into the app.
func open(t *testing.T, app *App) tea.Cmd {
	t.Helper()
	msg := app.openWatch()()
	_, cmd := app.Update(msg)
	return cmd
}

func TestNewApp_Validation(t *testing.T) {
	_, err := NewApp(&Ports{}, "s1")
	assert.ErrorIs(t, err, ErrMissingSearchService)

	_, err = NewApp(&Ports{Search: &MockSearchService{}, UserID: "u"}, "")
	assert.ErrorIs(t, err, ErrMissingSession)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t, &MockSearchService{})

	assert.NotNil(t, app.Init())
}

func TestApp_SnapshotThenUpdates(t *testing.T) {
	updates := make(chan domain.Notification, 4)
	search := &MockSearchService{Watched: runningWatch(updates), Infos: testInfos()}
	app := newTestApp(t, search)

	cmd := open(t, app)
	require.NotNil(t, cmd, "waits for updates while running")

	view := app.View()
	assert.Contains(t, view, "volcanoes")
	assert.Contains(t, view, "grade 6")
	assert.Contains(t, view, "searching")
	assert.Contains(t, view, "waiting", "khanacademy has no event yet")
	assert.Contains(t, view, "0/2 sources")

	items := []domain.ResultItem{{Title: "Volcano video", Type: domain.ResultTypeVideo}}
	updates <- domain.EventNotification(domain.SourceEvent{
		ID: "e2", Seq: 2, SessionID: "s1", Source: "khanacademy", Status: domain.EventCompleted, Payload: items,
	})
	_, cmd = app.Update(cmd())
	require.NotNil(t, cmd)
	assert.Contains(t, app.View(), "1 items")
	assert.Contains(t, app.View(), "1/2 sources")

	updates <- domain.SessionNotification(domain.SearchSession{
		ID: "s1", Query: "volcanoes", Grade: 6, Status: domain.SessionCompleted,
		UpdatedAt: base.Add(time.Second), Result: items,
	})
	_, cmd = app.Update(cmd())

	assert.Nil(t, cmd, "stops listening once the session is terminal")
	assert.Equal(t, 1, search.cancelCount())
	require.NotNil(t, app.Session())
	assert.Equal(t, domain.SessionCompleted, app.Session().Status)
	assert.Contains(t, app.View(), "Volcano video")
	assert.Contains(t, app.View(), "1 results")
}

func TestApp_TerminalSnapshot(t *testing.T) {
	w := runningWatch(make(chan domain.Notification))
	w.Session.Status = domain.SessionFailed
	search := &MockSearchService{Watched: w}
	app := newTestApp(t, search)

	cmd := open(t, app)

	assert.Nil(t, cmd)
	assert.Equal(t, 1, search.cancelCount())
	assert.Contains(t, app.View(), "Search failed.")
}

func TestApp_StreamClosed(t *testing.T) {
	updates := make(chan domain.Notification)
	app := newTestApp(t, &MockSearchService{Watched: runningWatch(updates)})
	cmd := open(t, app)

	close(updates)
	_, cmd = app.Update(cmd())

	assert.Nil(t, cmd)
	assert.Contains(t, app.View(), "live updates ended")
}

func TestApp_WatchFailed(t *testing.T) {
	app := newTestApp(t, &MockSearchService{WatchErr: domain.ErrForbidden})

	cmd := open(t, app)

	assert.Nil(t, cmd)
	assert.True(t, errors.Is(app.Err(), domain.ErrForbidden))
	assert.Contains(t, app.View(), "Error:")
}

func TestApp_QuitCancelsWatch(t *testing.T) {
	search := &MockSearchService{Watched: runningWatch(make(chan domain.Notification))}
	app := newTestApp(t, search)
	open(t, app)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	app.Close()
	assert.Equal(t, 1, search.cancelCount(), "cancel runs once")
}

func TestApp_WindowSize(t *testing.T) {
	app := newTestApp(t, &MockSearchService{Infos: testInfos()})

	_, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Nil(t, cmd)
	assert.Equal(t, 120, app.width)
	assert.Equal(t, 40, app.height)
}

func TestApp_IgnoresOtherSessions(t *testing.T) {
	updates := make(chan domain.Notification, 1)
	app := newTestApp(t, &MockSearchService{Watched: runningWatch(updates)})
	cmd := open(t, app)

	updates <- domain.SessionNotification(domain.SearchSession{ID: "other", Status: domain.SessionCompleted})
	_, cmd = app.Update(cmd())

	assert.NotNil(t, cmd)
	assert.Equal(t, domain.SessionRunning, app.Session().Status)
}

func TestApp_StreamClosedBeforeOpen(t *testing.T) {
	app := newTestApp(t, &MockSearchService{})

	_, cmd := app.Update(messages.StreamClosed{})

	assert.Nil(t, cmd)
}
