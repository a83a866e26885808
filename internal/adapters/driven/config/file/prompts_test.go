package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

func TestPromptStore_ImplementsInterface(t *testing.T) {
	var _ driven.PromptStore = (*PromptStore)(nil)
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".lessonscout", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptRelevance)
	require.NoError(t, err)

	for _, f := range []string{"relevance.txt", "extract.txt", "README.md"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
}

func TestPromptStore_DefaultsTakeThreeArguments(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{driven.PromptRelevance, driven.PromptExtract} {
		t.Run(name, func(t *testing.T) {
			prompt, err := store.Load(name)
			require.NoError(t, err)
			assert.Equal(t, 3, strings.Count(prompt, "%s"))

			rendered := fmt.Sprintf(prompt, "Volcanoes", "for grade 5", "PAYLOAD")
			assert.Contains(t, rendered, `"Volcanoes" for grade 5`)
			assert.True(t, strings.HasSuffix(rendered, "PAYLOAD"))
			assert.NotContains(t, rendered, "%!")
		})
	}
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "Rank these for %s %s: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "relevance.txt"), []byte("\n  "+custom+"  \n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	prompt, err := store.Load(driven.PromptRelevance)

	require.NoError(t, err)
	assert.Equal(t, custom, prompt, "surrounding whitespace is trimmed")

	data, err := os.ReadFile(filepath.Join(dir, "relevance.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), custom, "existing files are not overwritten")
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, _ = store.Load(driven.PromptExtract)
	require.NoError(t, os.Remove(filepath.Join(dir, "extract.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptExtract)

	require.NoError(t, err)
	assert.Contains(t, prompt, "CK12.org")
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptRelevance)
	require.NoError(t, err)

	modified := "modified %s %s %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "relevance.txt"), []byte(modified), 0600))

	cached, err := store.Load(driven.PromptRelevance)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptRelevance)
	require.NoError(t, err)
	assert.Equal(t, modified, fresh)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptExtract)
			assert.NoError(t, err)
			results[i] = prompt
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}
