package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyConnectorsEnabled = "connectors.enabled"
	keySerpAPIKey        = "connectors.serpapi_key"
	keyCSEKey            = "connectors.cse_key"
	keyCSEID             = "connectors.cse_cx"
	keyRequestTimeout    = "connectors.request_timeout"
	keyServerAddr        = "server.addr"
	keyServerTokens      = "server.tokens"
	keyRedisURL          = "notifier.redis_url"
	keySchedulerCapacity = "scheduler.capacity"
	keySchedulerDrain    = "scheduler.drain_timeout"
	keyFilterTimeout     = "filter.timeout"
)

// Environment variables consulted when the matching config key is empty.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvSerpAPIKey   = "SERP_API_KEY"
	EnvCSEKey       = "GOOGLE_CSE_KEY"
	EnvCSEID        = "GOOGLE_CSE_CX"
	EnvRedisURL     = "REDIS_URL"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Credentials fall back to environment variables when not stored.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)
	if provider == "" && s.getenv(EnvOpenAIKey) != "" {
		provider = domain.AIProviderOpenAI
	}
	model := s.configStore.GetString(keyLLMModel)
	if model == "" && provider.IsValid() {
		model = domain.DefaultLLMModels()[provider]
	}

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider: provider,
			Model:    model,
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.getString(keyLLMAPIKey, s.providerEnvKey(provider)),
		},
		Connectors: domain.ConnectorSettings{
			Enabled:        s.configStore.GetStringSlice(keyConnectorsEnabled),
			SerpAPIKey:     s.getString(keySerpAPIKey, s.getenv(EnvSerpAPIKey)),
			CSEKey:         s.getString(keyCSEKey, s.getenv(EnvCSEKey)),
			CSEID:          s.getString(keyCSEID, s.getenv(EnvCSEID)),
			RequestTimeout: s.getDuration(keyRequestTimeout, defaults.Connectors.RequestTimeout),
		},
		Server: domain.ServerSettings{
			Addr:   s.getString(keyServerAddr, defaults.Server.Addr),
			Tokens: s.configStore.GetStringMap(keyServerTokens),
		},
		Notifier: domain.NotifierSettings{
			RedisURL: s.getString(keyRedisURL, s.getenv(EnvRedisURL)),
		},
		Scheduler: domain.SchedulerConfig{
			Capacity:     s.getInt(keySchedulerCapacity, defaults.Scheduler.Capacity),
			DrainTimeout: s.getDuration(keySchedulerDrain, defaults.Scheduler.DrainTimeout),
		},
		FilterTimeout: s.getDuration(keyFilterTimeout, defaults.FilterTimeout),
	}

	return settings, nil
}

// Save persists application settings. Values that came from the environment
// are written too, so call SetLLMProvider for targeted changes instead.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	if len(settings.Connectors.Enabled) > 0 {
		if err := s.configStore.Set(keyConnectorsEnabled, settings.Connectors.Enabled); err != nil {
			return fmt.Errorf("save enabled connectors: %w", err)
		}
	}
	if err := s.configStore.Set(keyRequestTimeout, settings.Connectors.RequestTimeout.String()); err != nil {
		return fmt.Errorf("save request timeout: %w", err)
	}

	if err := s.configStore.Set(keyServerAddr, settings.Server.Addr); err != nil {
		return fmt.Errorf("save server addr: %w", err)
	}
	for token, userID := range settings.Server.Tokens {
		if err := s.configStore.Set(keyServerTokens+"."+token, userID); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}

	if err := s.configStore.Set(keySchedulerCapacity, settings.Scheduler.Capacity); err != nil {
		return fmt.Errorf("save scheduler capacity: %w", err)
	}
	if err := s.configStore.Set(keySchedulerDrain, settings.Scheduler.DrainTimeout.String()); err != nil {
		return fmt.Errorf("save scheduler drain timeout: %w", err)
	}
	if err := s.configStore.Set(keyFilterTimeout, settings.FilterTimeout.String()); err != nil {
		return fmt.Errorf("save filter timeout: %w", err)
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" && s.providerEnvKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	baseURL := ""
	if provider == domain.AIProviderOllama {
		baseURL = s.configStore.GetString(keyLLMBaseURL)
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
	}

	if err := s.configStore.Set(keyLLMProvider, provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, baseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	return nil
}

// AddToken maps a bearer token to a user id.
func (s *SettingsService) AddToken(token, userID string) error {
	token = strings.TrimSpace(token)
	userID = strings.TrimSpace(userID)
	if token == "" || userID == "" {
		return fmt.Errorf("%w: token and user id are required", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(token, ". \t") {
		return fmt.Errorf("%w: token must not contain dots or whitespace", domain.ErrInvalidInput)
	}
	return s.configStore.Set(keyServerTokens+"."+token, userID)
}

// RemoveToken revokes a bearer token.
func (s *SettingsService) RemoveToken(token string) error {
	key := keyServerTokens + "." + token
	if _, ok := s.configStore.Get(key); !ok {
		return fmt.Errorf("%w: token", domain.ErrNotFound)
	}
	return s.configStore.Delete(key)
}

// Validate checks that the current settings can run the server.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("LLM provider %q is not fully configured", settings.LLM.Provider.Description()))
	}
	if settings.Scheduler.Capacity < 0 {
		errs = append(errs, fmt.Errorf("scheduler capacity must not be negative, got %d", settings.Scheduler.Capacity))
	}
	if settings.Connectors.CSEKey != "" && settings.Connectors.CSEID == "" {
		errs = append(errs, errors.New("google custom search key set without a search engine id"))
	}
	for token, userID := range settings.Server.Tokens {
		if userID == "" {
			errs = append(errs, fmt.Errorf("token %s... maps to an empty user id", redact(token)))
		}
	}
	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		// Bare numbers are seconds.
		if secs := s.configStore.GetInt(key); secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) providerEnvKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicKey)
	default:
		return ""
	}
}

func redact(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4]
}
