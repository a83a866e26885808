package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// defaults holds the shipped prompt templates and the README copied next to them.
//
//go:embed defaults/*.txt defaults/README.md
var defaults embed.FS

const promptExt = ".txt"

// PromptStore serves LLM prompt templates from a user-editable directory.
// Missing or unreadable files fall back to the shipped defaults. The directory
// is seeded on first Load, never in the constructor.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// An empty dir means ~/.lessonscout/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".lessonscout", "prompts")
	}
	return &PromptStore{dir: dir, cache: map[string]string{}}, nil
}

// Load returns the template called name, trimmed of surrounding whitespace.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(func() { s.seedErr = s.seed() })

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	prompt, err := s.read(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = map[string]string{}
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// read prefers the user's file and falls back to the shipped default.
func (s *PromptStore) read(name string) (string, error) {
	if s.seedErr == nil {
		data, err := os.ReadFile(filepath.Join(s.dir, name+promptExt))
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
	}
	data, err := defaults.ReadFile(path.Join("defaults", name+promptExt))
	if err != nil {
		if s.seedErr != nil {
			return "", fmt.Errorf("load prompt %q: %w", name, errors.Join(err, s.seedErr))
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// seed creates the directory and copies in any shipped file the user lacks.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	entries, err := fs.ReadDir(defaults, "defaults")
	if err != nil {
		return err
	}
	for _, e := range entries {
		dst := filepath.Join(s.dir, e.Name())
		if _, err := os.Stat(dst); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		data, err := defaults.ReadFile(path.Join("defaults", e.Name()))
		if err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0600); err != nil {
			return fmt.Errorf("write default %s: %w", e.Name(), err)
		}
	}
	return nil
}
