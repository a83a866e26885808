package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

// RelevanceInputCap is the number of merged items handed to the scorer.
const RelevanceInputCap = 10

// DefaultFilterTimeout bounds a scorer call when none is configured.
const DefaultFilterTimeout = 60 * time.Second

var filterLog = logger.With("filter")

// RelevanceFilter prunes merged results through an external scorer.
// With no scorer configured the capped input is returned unchanged.
type RelevanceFilter struct {
	scorer  driven.RelevanceScorer
	timeout time.Duration
}

// NewRelevanceFilter creates a filter. A non-positive timeout uses
// DefaultFilterTimeout.
func NewRelevanceFilter(scorer driven.RelevanceScorer, timeout time.Duration) *RelevanceFilter {
	if timeout <= 0 {
		timeout = DefaultFilterTimeout
	}
	return &RelevanceFilter{scorer: scorer, timeout: timeout}
}

// Filter scores at most RelevanceInputCap items.
//
// A scorer error or timeout is returned wrapped in domain.ErrFilterTimeout or
// domain.ErrFilterFailed and should fail the session. A response that cannot
// be decoded is logged and yields an empty result with a nil error.
func (f *RelevanceFilter) Filter(
	ctx context.Context,
	items []domain.ResultItem,
	query string,
	grade domain.GradeFilter,
) ([]domain.ResultItem, error) {
	candidates := items
	if len(candidates) > RelevanceInputCap {
		candidates = candidates[:RelevanceInputCap]
	}
	if len(candidates) == 0 {
		return []domain.ResultItem{}, nil
	}
	if f.scorer == nil {
		return domain.Concat(candidates), nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	text, err := f.scorer.Score(ctx, candidates, query, grade)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", domain.ErrFilterTimeout, f.timeout, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrFilterFailed, err)
	}

	decoded := domain.DecodeResults(text)
	if !decoded.OK() {
		filterLog.Warn("%v; response: %.200q", decoded.Err, text)
	}
	return decoded.Items, nil
}
