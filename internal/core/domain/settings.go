package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider backing the relevance filter
// and HTML extraction.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible gateways).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ConnectorSettings holds credentials and toggles for the content sources.
type ConnectorSettings struct {
	// Enabled lists connector names to register. Empty means all built-ins.
	Enabled []string

	// SerpAPIKey authenticates the Google PDF connector against SerpAPI.
	SerpAPIKey string

	// CSEKey and CSEID select the Google Custom Search backend instead of SerpAPI.
	CSEKey string
	CSEID  string

	// RequestTimeout bounds a single upstream HTTP call.
	RequestTimeout time.Duration
}

// ServerSettings holds the HTTP listener configuration.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Tokens maps bearer tokens to user ids.
	Tokens map[string]string
}

// NotifierSettings holds realtime fan-out configuration.
type NotifierSettings struct {
	// RedisURL enables cross-process fan-out when set.
	RedisURL string
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM        LLMSettings
	Connectors ConnectorSettings
	Server     ServerSettings
	Notifier   NotifierSettings
	Scheduler  SchedulerConfig

	// FilterTimeout bounds the relevance filter call.
	FilterTimeout time.Duration
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; without it the relevance filter is skipped.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Connectors: ConnectorSettings{
			RequestTimeout: 30 * time.Second,
		},
		Server: ServerSettings{
			Addr:   ":8080",
			Tokens: map[string]string{},
		},
		Scheduler:     DefaultSchedulerConfig(),
		FilterTimeout: 60 * time.Second,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
