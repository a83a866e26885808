package memory

import (
	"strings"
	"sync"

	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps configuration in a map. Nothing is persisted.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a new in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		values: make(map[string]any),
	}
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func typed[T any](s *ConfigStore, key string) (T, bool) {
	val, _ := s.Get(key)
	t, ok := val.(T)
	return t, ok
}

// GetString returns the string at key, or "".
func (s *ConfigStore) GetString(key string) string {
	v, _ := typed[string](s, key)
	return v
}

// GetInt accepts any integer width a caller may have stored.
func (s *ConfigStore) GetInt(key string) int {
	if v, ok := typed[int](s, key); ok {
		return v
	}
	v, _ := typed[int64](s, key)
	return int(v)
}

// GetBool returns the boolean at key, or false.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := typed[bool](s, key)
	return v
}

// GetStringSlice returns the []string at key, or nil.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := typed[[]string](s, key)
	return v
}

// GetStringMap returns string values stored under "prefix.".
func (s *ConfigStore) GetStringMap(prefix string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]string)
	p := prefix + "."
	for k, v := range s.values {
		if !strings.HasPrefix(k, p) {
			continue
		}
		if str, ok := v.(string); ok && len(k) > len(p) {
			result[k[len(p):]] = str
		}
	}
	return result
}

// Delete removes a configuration value.
func (s *ConfigStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save persists the current configuration (no-op for memory store).
func (s *ConfigStore) Save() error {
	return nil
}

// Load reads configuration from storage (no-op for memory store).
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
