package googlepdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// mockBackend returns canned hits and records queries.
type mockBackend struct {
	hits    []Hit
	err     error
	queries []string
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Search(_ context.Context, query string) ([]Hit, error) {
	m.queries = append(m.queries, query)
	return m.hits, m.err
}

func TestConnector_Identity(t *testing.T) {
	c := New(&mockBackend{})
	assert.Equal(t, "googlepdf", c.Name())
	assert.Equal(t, domain.ClassParallel, c.Class())
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "photosynthesis class 7 filetype:pdf", BuildQuery("photosynthesis", 7))
	assert.Equal(t, "photosynthesis filetype:pdf", BuildQuery(" photosynthesis ", domain.GradeAll))
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		link     string
		expected bool
	}{
		{"https://example.org/worksheet.pdf", true},
		{"https://example.org/Worksheet.PDF", true},
		{"https://example.org/file.pdf?download=1", true},
		{"https://example.org/page.html", false},
		{"https://example.org/pdf", false},
		{"https://example.org/", false},
		{"", false},
		{"://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPDF(tt.link))
		})
	}
}

func TestConnector_Search(t *testing.T) {
	backend := &mockBackend{hits: []Hit{
		{Title: "Photosynthesis worksheet", Link: "https://school.example/ps.pdf", Snippet: "Grade 7", Thumbnail: "https://img/1"},
		{Title: "Photosynthesis blog", Link: "https://blog.example/ps"},
		{Title: "Answer key", Link: "https://school.example/KEY.PDF"},
	}}

	items, err := New(backend).Search(context.Background(), domain.SearchRequest{Query: "photosynthesis", Grade: 7})

	require.NoError(t, err)
	assert.Equal(t, []string{"photosynthesis class 7 filetype:pdf"}, backend.queries)
	require.Len(t, items, 2)
	assert.Equal(t, domain.ResultItem{
		Title:       "Photosynthesis worksheet",
		Description: "Grade 7",
		Link:        "https://school.example/ps.pdf",
		Image:       "https://img/1",
		Type:        domain.ResultTypeWorksheet,
	}, items[0])
	assert.Equal(t, domain.ResultTypeWorksheet, items[1].Type)
}

func TestConnector_Search_NoPDFs(t *testing.T) {
	backend := &mockBackend{hits: []Hit{{Title: "page", Link: "https://example.org/a.html"}}}

	items, err := New(backend).Search(context.Background(), domain.SearchRequest{Query: "q"})

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestConnector_Search_BackendError(t *testing.T) {
	boom := errors.New("boom")

	_, err := New(&mockBackend{err: boom}).Search(context.Background(), domain.SearchRequest{Query: "q"})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "mock search")
}

func TestNewFromSettings(t *testing.T) {
	ctx := context.Background()

	_, err := NewFromSettings(ctx, domain.ConnectorSettings{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewFromSettings(ctx, domain.ConnectorSettings{CSEKey: "only-key"})
	assert.ErrorIs(t, err, ErrNotConfigured, "CSE needs both key and engine id")

	serp, err := NewFromSettings(ctx, domain.ConnectorSettings{SerpAPIKey: "serp"})
	require.NoError(t, err)
	assert.Equal(t, "serpapi", serp.backend.Name())

	cse, err := NewFromSettings(ctx, domain.ConnectorSettings{SerpAPIKey: "serp", CSEKey: "k", CSEID: "cx"})
	require.NoError(t, err)
	assert.Equal(t, "cse", cse.backend.Name(), "CSE wins when fully configured")
}
