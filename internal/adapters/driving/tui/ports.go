// Package tui provides an interactive terminal view that follows a search
// session live. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Search opens the live feed of a session.
	Search driving.SearchService

	// UserID is the identity sessions are read as.
	UserID string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.UserID == "" {
		return ErrMissingUser
	}
	return nil
}
