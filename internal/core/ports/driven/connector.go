package driven

import (
	"context"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// Connector fetches candidate learning resources from one content source.
// Each source (CK12, Khan Academy, Google PDF search, ...) implements this
// interface. Implementations report failures as errors; the core records
// progress events and isolates failures, so connectors never touch the
// event log themselves.
type Connector interface {
	// Name returns the stable source identifier recorded on events.
	Name() string

	// Class declares how the connector may be scheduled relative to others.
	Class() domain.ConcurrencyClass

	// Search runs the query against the source.
	// An empty, non-nil slice means the source ran fine and found nothing.
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.ResultItem, error)
}
