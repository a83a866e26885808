package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

// App follows one search session live: per-source progress while the
// pipeline runs, then the filtered results. It implements tea.Model.
type App struct {
	ports     *Ports
	ctx       context.Context
	sessionID string

	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	results *list.ResultList
	bar     *status.Bar

	projection *domain.Projection
	watch      *driving.SessionWatch
	sources    []string

	err    error
	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a watch view for sessionID.
func NewApp(ports *Ports, sessionID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Warning

	var sources []string
	for _, info := range ports.Search.Connectors() {
		sources = append(sources, info.Name)
	}

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		sessionID:  sessionID,
		styles:     s,
		keymap:     km,
		spinner:    sp,
		results:    list.NewResultList(s, km),
		bar:        status.NewBar(s, km),
		projection: domain.NewProjection(sessionID),
		sources:    sources,
		width:      80,
		height:     24,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init opens the session feed.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.openWatch())
}

func (a *App) openWatch() tea.Cmd {
	search, userID, sessionID, ctx := a.ports.Search, a.ports.UserID, a.sessionID, a.ctx
	return func() tea.Msg {
		w, err := search.Watch(ctx, userID, sessionID)
		if err != nil {
			return messages.WatchFailed{Err: err}
		}
		return messages.WatchOpened{Watch: w}
	}
}

// waitForUpdate blocks on the next live notification.
func waitForUpdate(updates <-chan domain.Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-updates
		if !ok {
			return messages.StreamClosed{}
		}
		return messages.Updated{Notification: n}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.bar.SetWidth(msg.Width)
		a.results.SetDimensions(msg.Width, msg.Height-len(a.sourceNames())-6)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			a.Close()
			return a, tea.Quit
		}
		a.results.Update(msg)
		return a, nil

	case messages.WatchOpened:
		a.watch = msg.Watch
		if msg.Watch.Session != nil {
			a.projection.Apply(domain.SessionNotification(*msg.Watch.Session))
		}
		for i := range msg.Watch.Events {
			a.projection.Apply(domain.EventNotification(msg.Watch.Events[i]))
		}
		a.refresh()
		if a.projection.Done() {
			a.Close()
			return a, nil
		}
		return a, waitForUpdate(msg.Watch.Updates)

	case messages.Updated:
		a.projection.Apply(msg.Notification)
		a.refresh()
		if a.projection.Done() {
			a.Close()
			return a, nil
		}
		return a, waitForUpdate(a.watch.Updates)

	case messages.StreamClosed:
		if !a.projection.Done() {
			a.bar.SetMessage("live updates ended; run 'lessonscout status " + a.sessionID + "'")
		}
		return a, nil

	case messages.WatchFailed:
		a.err = msg.Err
		a.bar.SetMessage("Error: " + msg.Err.Error())
		return a, nil

	case spinner.TickMsg:
		if a.projection.Done() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

// refresh copies the projection into the child components.
func (a *App) refresh() {
	session := a.projection.Session()
	if session != nil {
		a.bar.SetStatus(session.Status)
		a.results.SetItems(session.Result)
		a.bar.SetResultCount(len(session.Result))
	}

	done := 0
	for _, e := range a.projection.Sources() {
		if e.Status.IsTerminal() {
			done++
		}
	}
	a.bar.SetProgress(done, len(a.sourceNames()))
}

// sourceNames lists registered sources plus any seen only in events.
func (a *App) sourceNames() []string {
	names := append([]string(nil), a.sources...)
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	for _, e := range a.projection.Sources() {
		if !known[e.Source] {
			names = append(names, e.Source)
		}
	}
	return names
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(a.renderSources())
	b.WriteString("\n\n")

	if session := a.projection.Session(); session != nil && session.Status == domain.SessionCompleted {
		b.WriteString(a.results.View())
	} else if session != nil && session.Status == domain.SessionFailed {
		b.WriteString(a.styles.Error.Render("Search failed."))
	} else {
		b.WriteString(a.styles.Muted.Render("Waiting for results..."))
	}

	body := b.String()
	gap := a.height - lipgloss.Height(body) - 1
	if gap < 1 {
		gap = 1
	}
	return body + strings.Repeat("\n", gap) + a.bar.View()
}

func (a *App) renderHeader() string {
	title := a.styles.Title.Render("lessonscout")
	session := a.projection.Session()
	if session == nil {
		return title + a.styles.Muted.Render("  "+a.sessionID)
	}
	grade := "all grades"
	if !session.Grade.IsAll() {
		grade = "grade " + session.Grade.String()
	}
	return title + "  " + a.styles.Normal.Render(session.Query) + a.styles.Muted.Render("  "+grade)
}

func (a *App) renderSources() string {
	names := a.sourceNames()
	if len(names) == 0 {
		return a.styles.Muted.Render("No sources registered")
	}

	lines := make([]string, 0, len(names))
	for _, name := range names {
		e, ok := a.projection.Source(name)
		var marker, state string
		switch {
		case !ok:
			marker, state = " ", "waiting"
		case e.Status == domain.EventCompleted:
			marker, state = "✓", fmt.Sprintf("%d items", len(e.Payload))
		case e.Status == domain.EventFailed:
			marker, state = "✗", "failed"
		default:
			marker, state = a.spinner.View(), "searching"
		}
		style := a.styles.Muted
		if ok {
			style = a.styles.ForEvent(e.Status)
		}
		lines = append(lines, fmt.Sprintf("%s %-14s %s", style.Render(marker), name, style.Render(state)))
	}
	return a.styles.Panel.Render(strings.Join(lines, "\n"))
}

// Session returns the latest session state seen.
func (a *App) Session() *domain.SearchSession {
	return a.projection.Session()
}

// Err returns the error that prevented the session from opening.
func (a *App) Err() error {
	return a.err
}

// Close releases the live feed.
func (a *App) Close() {
	if a.watch != nil && a.watch.Cancel != nil {
		a.watch.Cancel()
		a.watch.Cancel = nil
	}
}
