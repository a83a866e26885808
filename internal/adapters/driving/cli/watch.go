package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

// errFeedClosed is returned when live updates stop before the session ends.
var errFeedClosed = errors.New("live updates ended before the search finished")

// isTerminal reports whether w is an interactive terminal.
// It is a variable so tests can force either output mode.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// followSession blocks until the session is terminal and returns its final
// state. With progress set, per-source updates are shown: in the TUI on a
// terminal, as plain lines otherwise.
func followSession(
	ctx context.Context,
	cmd *cobra.Command,
	search driving.SearchService,
	sessionID string,
	progress bool,
) (*domain.SearchSession, error) {
	if progress && isTerminal(cmd.OutOrStdout()) {
		session, err := runWatchTUI(ctx, cmd, search, sessionID)
		if err != nil || session.Status.IsTerminal() {
			return session, err
		}
		// Quit before the end: keep waiting quietly.
		progress = false
	}

	w, err := search.Watch(ctx, currentUser(), sessionID)
	if err != nil {
		return nil, err
	}
	defer w.Cancel()

	p := domain.NewProjection(sessionID)
	apply := func(n domain.Notification) {
		if p.Apply(n) && progress {
			printNotification(cmd, n)
		}
	}
	if w.Session != nil {
		apply(domain.SessionNotification(*w.Session))
	}
	for i := range w.Events {
		apply(domain.EventNotification(w.Events[i]))
	}

	for !p.Done() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case n, ok := <-w.Updates:
			if !ok {
				return nil, errFeedClosed
			}
			apply(n)
		}
	}
	return p.Session(), nil
}

func printNotification(cmd *cobra.Command, n domain.Notification) {
	switch {
	case n.Event != nil:
		e := n.Event
		if e.Status == domain.EventCompleted {
			cmd.Printf("  [%s] %s (%d items)\n", e.Source, e.Status, len(e.Payload))
			return
		}
		cmd.Printf("  [%s] %s\n", e.Source, e.Status)
	case n.Session != nil:
		cmd.Printf("session %s\n", n.Session.Status)
	}
}

func runWatchTUI(
	ctx context.Context,
	cmd *cobra.Command,
	search driving.SearchService,
	sessionID string,
) (*domain.SearchSession, error) {
	app, err := tui.NewApp(&tui.Ports{Search: search, UserID: currentUser()}, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}
	if err := app.Err(); err != nil {
		return nil, err
	}
	session := app.Session()
	if session == nil {
		return nil, errFeedClosed
	}
	return session, nil
}
