package mcp

import (
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search submits and reads search sessions.
	Search driving.SearchService

	// UserID is the identity tools act as over stdio. Over HTTP the user is
	// taken from the bearer token instead.
	UserID string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
