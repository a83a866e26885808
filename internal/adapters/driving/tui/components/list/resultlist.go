// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lessonscout/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// linesPerItem is the rendered height of one result.
const linesPerItem = 3

// ResultList displays filtered results in a navigable list.
type ResultList struct {
	items    []domain.ResultItem
	selected int
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles, km *keymap.KeyMap) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &ResultList{
		styles: s,
		keymap: km,
		width:  80,
		height: 12,
	}
}

// Update handles list navigation keys.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	switch k := keyMsg.String(); {
	case keymap.Matches(k, r.keymap.Up):
		r.MoveUp()
	case keymap.Matches(k, r.keymap.Down):
		r.MoveDown()
	case keymap.Matches(k, r.keymap.Top):
		r.selected = 0
	case keymap.Matches(k, r.keymap.Bottom):
		if len(r.items) > 0 {
			r.selected = len(r.items) - 1
		}
	}
	return r, nil
}

// View renders the visible window of results around the selection.
func (r *ResultList) View() string {
	if len(r.items) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.items)*linesPerItem+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.items))), "")

	visible := (r.height - 2) / linesPerItem
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.items) {
		end = len(r.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderItem(i, &r.items[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *ResultList) renderItem(index int, item *domain.ResultItem) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := item.Title
	if title == "" {
		title = "(Untitled)"
	}
	badge := r.styles.Badge.Render(string(item.Type))

	maxTitle := r.width - len(item.Type) - 8
	title = truncate(title, maxTitle)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(indicator+title) + badge
	} else {
		titleLine = r.styles.Normal.Render(indicator+title) + badge
	}

	desc := truncate(item.Description, r.width-6)
	link := truncate(item.Link, r.width-6)
	return titleLine + "\n" +
		r.styles.Muted.Render("    "+desc) + "\n" +
		r.styles.Subtitle.Render("    "+link)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if n < 10 {
		n = 10
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetItems replaces the listed results, keeping the selection in range.
func (r *ResultList) SetItems(items []domain.ResultItem) {
	r.items = items
	if r.selected >= len(items) {
		r.selected = 0
	}
}

// Items returns the listed results.
func (r *ResultList) Items() []domain.ResultItem {
	return r.items
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedItem returns the selected result, or nil if the list is empty.
func (r *ResultList) SelectedItem() *domain.ResultItem {
	if r.selected < 0 || r.selected >= len(r.items) {
		return nil
	}
	return &r.items[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.items)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.items)
}
