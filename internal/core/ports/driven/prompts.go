package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptRelevance asks the model to keep the results that suit a query and
	// grade. The template expects %s (query), %s (grade) and %s (candidates JSON).
	PromptRelevance = "relevance"

	// PromptExtract asks the model to pull result items out of raw HTML.
	// The template expects %s (query), %s (grade) and %s (HTML).
	PromptExtract = "extract"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
