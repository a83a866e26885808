// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// Bar displays session status, source progress and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	status  domain.SessionStatus
	done    int
	total   int
	results int
	message string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		status: domain.SessionPending,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	if s.message != "" {
		return s.styles.Error.Render(s.message)
	}
	status := s.styles.ForSession(s.status).Render(string(s.status))
	parts := []string{status}
	if s.total > 0 {
		parts = append(parts, s.styles.Muted.Render(fmt.Sprintf("%d/%d sources", s.done, s.total)))
	}
	if s.status == domain.SessionCompleted {
		parts = append(parts, s.styles.Normal.Render(fmt.Sprintf("%d results", s.results)))
	}
	return strings.Join(parts, "  ")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.results > 0 {
		bindings = s.keymap.ResultsHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetStatus sets the session status.
func (s *Bar) SetStatus(status domain.SessionStatus) {
	s.status = status
}

// Status returns the session status shown.
func (s *Bar) Status() domain.SessionStatus {
	return s.status
}

// SetProgress sets how many of total sources have finished.
func (s *Bar) SetProgress(done, total int) {
	s.done, s.total = done, total
}

// SetResultCount sets the result count.
func (s *Bar) SetResultCount(count int) {
	s.results = count
}

// SetMessage shows an error message in place of the status.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}
