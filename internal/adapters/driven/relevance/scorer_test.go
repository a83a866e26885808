package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	reply  string
	err    error
	prompt string
	opts   driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompt = prompt
	m.opts = opts
	return m.reply, m.err
}
func (m *mockLLM) ModelName() string          { return "mock-model" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}
func (m *mockPromptStore) Reload() {}

var candidates = []domain.ResultItem{
	{Title: "Volcano video", Link: "https://example.com/v", Type: domain.ResultTypeVideo},
}

func TestScorer_Score_DefaultPrompt(t *testing.T) {
	llm := &mockLLM{reply: "```json\n[]\n```"}
	scorer := NewScorer(llm)

	out, err := scorer.Score(context.Background(), candidates, "Volcanoes", 5)

	require.NoError(t, err)
	assert.Equal(t, "```json\n[]\n```", out, "reply is returned undecoded")
	assert.Contains(t, llm.prompt, `topic "Volcanoes" for grade 5,`)
	assert.Contains(t, llm.prompt, `"title":"Volcano video"`)
	assert.InDelta(t, Temperature, llm.opts.Temperature, 1e-9)
}

func TestScorer_Score_AllGrades(t *testing.T) {
	llm := &mockLLM{reply: "[]"}

	_, err := NewScorer(llm).Score(context.Background(), candidates, "Fractions", domain.GradeAll)

	require.NoError(t, err)
	assert.Contains(t, llm.prompt, `topic "Fractions" ,`)
	assert.NotContains(t, llm.prompt, "grade")
}

func TestScorer_Score_CustomPrompt(t *testing.T) {
	llm := &mockLLM{reply: "[]"}
	scorer := NewScorer(llm)
	scorer.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptRelevance: "Q=%s G=%s R=%s",
	}})

	_, err := scorer.Score(context.Background(), nil, "Plants", 3)

	require.NoError(t, err)
	assert.Equal(t, "Q=Plants G=for grade 3 R=null", llm.prompt)
}

func TestScorer_Score_PromptStoreErrorFallsBack(t *testing.T) {
	llm := &mockLLM{reply: "[]"}
	scorer := NewScorer(llm)
	scorer.SetPromptStore(&mockPromptStore{})

	_, err := scorer.Score(context.Background(), candidates, "Plants", 3)

	require.NoError(t, err)
	assert.Contains(t, llm.prompt, "You are a learning assistant")
}

func TestScorer_Score_LLMError(t *testing.T) {
	boom := errors.New("rate limited")
	_, err := NewScorer(&mockLLM{err: boom}).Score(context.Background(), candidates, "q", 1)

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "mock-model")
}

func TestScorer_Score_NoLLM(t *testing.T) {
	_, err := NewScorer(nil).Score(context.Background(), candidates, "q", 1)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
