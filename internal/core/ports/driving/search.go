package driving

import (
	"context"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// SearchService accepts search submissions and exposes their progress.
type SearchService interface {
	// Submit validates the input, creates a pending session and hands it to
	// the admission queue. It returns as soon as the session is persisted and
	// never waits for the pipeline.
	Submit(ctx context.Context, userID, query string, grade domain.GradeFilter) (*domain.SearchSession, error)

	// Session returns a session owned by the user.
	// Returns domain.ErrNotFound or domain.ErrForbidden.
	Session(ctx context.Context, userID, sessionID string) (*domain.SearchSession, error)

	// Events returns the session's progress events ordered by sequence.
	Events(ctx context.Context, userID, sessionID string) ([]domain.SourceEvent, error)

	// Sessions lists the user's recent sessions.
	Sessions(ctx context.Context, userID string, limit int) ([]domain.SearchSession, error)

	// Watch subscribes to a session's live notifications and returns them
	// together with a snapshot taken after the subscription was opened, so no
	// change falls between the two. Callers must invoke Cancel.
	Watch(ctx context.Context, userID, sessionID string) (*SessionWatch, error)

	// Connectors describes the registered sources.
	Connectors() []domain.ConnectorInfo
}

// SessionWatch is a snapshot of a session plus its live feed.
// Updates may repeat changes already reflected in the snapshot; merge them
// with domain.Projection.
type SessionWatch struct {
	Session *domain.SearchSession
	Events  []domain.SourceEvent
	Updates <-chan domain.Notification
	Cancel  func()
}
