package driving

import "github.com/custodia-labs/lessonscout/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment fallbacks
	// applied for credentials.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider backing relevance filtering
	// and HTML extraction.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// AddToken maps a bearer token to a user id.
	AddToken(token, userID string) error

	// RemoveToken revokes a bearer token.
	RemoveToken(token string) error

	// Validate checks that the current settings can run the server.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
