package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

func items(n int) []domain.ResultItem {
	out := make([]domain.ResultItem, n)
	for i := range out {
		out[i] = item(fmt.Sprintf("r%02d", i))
	}
	return out
}

func TestRelevanceFilter_CapsInput(t *testing.T) {
	scorer := &mockScorer{response: "[]"}
	filter := NewRelevanceFilter(scorer, time.Second)

	_, err := filter.Filter(context.Background(), items(25), "volcanoes", 5)

	require.NoError(t, err)
	assert.Len(t, scorer.received, RelevanceInputCap)
	assert.Equal(t, items(25)[:RelevanceInputCap], scorer.received)
}

func TestRelevanceFilter_EmptyInputSkipsScorer(t *testing.T) {
	scorer := &mockScorer{response: "[]"}
	filter := NewRelevanceFilter(scorer, time.Second)

	got, err := filter.Filter(context.Background(), nil, "volcanoes", 5)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, scorer.calls)
}

func TestRelevanceFilter_DecodesScorerResponse(t *testing.T) {
	scorer := &mockScorer{response: "```json\n[{\"title\":\"Keep\",\"link\":\"https://k\",\"type\":\"Game\"}]\n```"}
	filter := NewRelevanceFilter(scorer, time.Second)

	got, err := filter.Filter(context.Background(), items(3), "volcanoes", 5)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Keep", got[0].Title)
	assert.Equal(t, domain.ResultTypeGame, got[0].Type)
}

func TestRelevanceFilter_ParseFailureDegradesToEmpty(t *testing.T) {
	filter := NewRelevanceFilter(&mockScorer{response: "I think these are great!"}, time.Second)

	got, err := filter.Filter(context.Background(), items(3), "volcanoes", 5)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRelevanceFilter_ScorerErrorIsFatal(t *testing.T) {
	filter := NewRelevanceFilter(&mockScorer{err: errors.New("401 unauthorized")}, time.Second)

	_, err := filter.Filter(context.Background(), items(3), "volcanoes", 5)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFilterFailed)
	assert.NotErrorIs(t, err, domain.ErrFilterTimeout)
}

func TestRelevanceFilter_Timeout(t *testing.T) {
	filter := NewRelevanceFilter(&mockScorer{block: true}, 20*time.Millisecond)

	_, err := filter.Filter(context.Background(), items(3), "volcanoes", 5)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFilterTimeout)
}

func TestRelevanceFilter_NilScorerPassesThroughCapped(t *testing.T) {
	filter := NewRelevanceFilter(nil, 0)

	got, err := filter.Filter(context.Background(), items(12), "volcanoes", 5)

	require.NoError(t, err)
	assert.Equal(t, items(12)[:RelevanceInputCap], got)
}

func TestNewRelevanceFilter_DefaultTimeout(t *testing.T) {
	filter := NewRelevanceFilter(nil, 0)
	assert.Equal(t, DefaultFilterTimeout, filter.timeout)
}
