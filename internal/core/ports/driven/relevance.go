package driven

import (
	"context"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// RelevanceScorer ranks and prunes candidate results for a query.
// The response is free-form text expected to contain a JSON array of result
// items, optionally fenced in a markdown code block. Decoding belongs to the
// caller.
type RelevanceScorer interface {
	Score(ctx context.Context, candidates []domain.ResultItem, query string, grade domain.GradeFilter) (string, error)
}
