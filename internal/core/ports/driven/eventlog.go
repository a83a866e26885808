package driven

import (
	"context"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// EventLog is the append-only store of per-source progress events.
type EventLog interface {
	// Append stores an event. Events are never updated or deleted.
	Append(ctx context.Context, event domain.SourceEvent) error

	// List returns a session's events ordered by sequence.
	List(ctx context.Context, sessionID string) ([]domain.SourceEvent, error)
}
