// Package relevance provides an LLM-backed implementation of the
// driven.RelevanceScorer port.
package relevance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

// Temperature is the sampling temperature for relevance scoring.
const Temperature = 0.4

// defaultRelevancePrompt is the fallback prompt when no PromptStore is configured.
const defaultRelevancePrompt = `You are a learning assistant. Given search results and a topic "%s" %s, ` +
	`your task is to filter and prioritize the results based on relevance and quality.
Return only relevant entries in JSON format like:
[{ "title": "...", "description": "...", "link": "...", "image": "...", "type": "..." }]

Results:
%s`

var (
	_ driven.RelevanceScorer  = (*Scorer)(nil)
	_ driven.PromptStoreAware = (*Scorer)(nil)
)

// Scorer asks an LLM to keep and order the candidates that suit a topic and grade.
type Scorer struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewScorer creates a scorer backed by llm.
func NewScorer(llm driven.LLMService) *Scorer {
	return &Scorer{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *Scorer) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Score returns the raw model reply. Decoding is left to the caller.
func (s *Scorer) Score(
	ctx context.Context,
	candidates []domain.ResultItem,
	query string,
	grade domain.GradeFilter,
) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}

	prompt := fmt.Sprintf(s.loadPrompt(), query, grade.Phrase(), payload)
	out, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: Temperature})
	if err != nil {
		return "", fmt.Errorf("score with %s: %w", s.llm.ModelName(), err)
	}
	return out, nil
}

// loadPrompt loads the prompt from the store, falling back to the default if unavailable.
func (s *Scorer) loadPrompt() string {
	if s.promptStore == nil {
		return defaultRelevancePrompt
	}
	prompt, err := s.promptStore.Load(driven.PromptRelevance)
	if err != nil {
		return defaultRelevancePrompt
	}
	return prompt
}
