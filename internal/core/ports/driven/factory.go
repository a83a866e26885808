package driven

import (
	"context"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// ConnectorDeps carries what built-in connectors may need.
// LLM and Prompts may be nil.
type ConnectorDeps struct {
	Settings domain.ConnectorSettings
	LLM      LLMService
	Prompts  PromptStore
}

// ConnectorBuilder creates one connector. A builder returns an error when a
// prerequisite (credentials, a model) is missing.
type ConnectorBuilder func(ctx context.Context, deps ConnectorDeps) (Connector, error)

// ConnectorFactory builds the enabled connectors in registration order.
type ConnectorFactory interface {
	// Build creates every enabled connector. Connectors whose prerequisites
	// are missing are skipped and reported as warnings. Naming an unknown
	// connector in Settings.Enabled returns ErrUnsupportedType.
	Build(ctx context.Context, deps ConnectorDeps) ([]Connector, []string, error)

	// Names returns the built-in connector names in registration order.
	Names() []string
}
