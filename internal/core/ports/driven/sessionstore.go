package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// SessionStore persists search sessions and their final payloads.
// Status writes are point updates guarded by domain.CanTransition; the store
// rejects backwards or post-terminal transitions with domain.ErrInvalidTransition.
type SessionStore interface {
	// Create stores a new session. The session must be pending.
	Create(ctx context.Context, session *domain.SearchSession) error

	// Get retrieves a session by ID, including its result when completed.
	// Returns domain.ErrNotFound if the session does not exist.
	Get(ctx context.Context, id string) (*domain.SearchSession, error)

	// ListByStatus returns sessions in the given status, oldest first.
	ListByStatus(ctx context.Context, status domain.SessionStatus) ([]domain.SearchSession, error)

	// ListByUser returns a user's sessions, most recent first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.SearchSession, error)

	// Transition moves a session to a non-completed status.
	// Use Complete to reach domain.SessionCompleted.
	Transition(ctx context.Context, id string, to domain.SessionStatus, at time.Time) (*domain.SearchSession, error)

	// Complete stores the final result and moves the session to completed.
	// The result is written exactly once.
	Complete(ctx context.Context, id string, result []domain.ResultItem, at time.Time) (*domain.SearchSession, error)
}
