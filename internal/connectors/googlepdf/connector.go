// Package googlepdf finds printable worksheets by running a filetype:pdf web
// search through SerpAPI or the Google Custom Search API.
package googlepdf

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

// Name is the source identifier recorded on events.
const Name = "googlepdf"

// Search parameters shared by both backends.
const (
	numResults = 10
	language   = "en"
	country    = "in"
)

// ErrNotConfigured is returned when neither SerpAPI nor Custom Search
// credentials are available.
var ErrNotConfigured = errors.New("googlepdf: no SerpAPI key or Custom Search credentials configured")

var log = logger.With(Name)

// Hit is one organic web result.
type Hit struct {
	Title     string
	Link      string
	Snippet   string
	Thumbnail string
}

// Backend runs a raw web query.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// Search returns organic results for query.
	Search(ctx context.Context, query string) ([]Hit, error)
}

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector turns web search hits that point at PDF files into worksheets.
type Connector struct {
	backend Backend
}

// New creates a connector over backend.
func New(backend Backend) *Connector {
	return &Connector{backend: backend}
}

// NewFromSettings picks a backend from the connector settings.
// Custom Search is used when both its key and engine id are set, SerpAPI otherwise.
func NewFromSettings(ctx context.Context, s domain.ConnectorSettings) (*Connector, error) {
	switch {
	case s.CSEKey != "" && s.CSEID != "":
		backend, err := NewCSE(ctx, s.CSEKey, s.CSEID)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case s.SerpAPIKey != "":
		return New(NewSerpAPI(s.SerpAPIKey, WithTimeout(s.RequestTimeout))), nil
	default:
		return nil, ErrNotConfigured
	}
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return Name
}

// Class returns ClassParallel.
func (c *Connector) Class() domain.ConcurrencyClass {
	return domain.ClassParallel
}

// Search queries the backend and keeps results whose URL path ends in .pdf.
func (c *Connector) Search(ctx context.Context, req domain.SearchRequest) ([]domain.ResultItem, error) {
	query := BuildQuery(req.Query, req.Grade)

	hits, err := c.backend.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", c.backend.Name(), err)
	}

	items := []domain.ResultItem{}
	for _, h := range hits {
		if !IsPDF(h.Link) {
			continue
		}
		items = append(items, domain.ResultItem{
			Title:       h.Title,
			Description: h.Snippet,
			Link:        h.Link,
			Image:       h.Thumbnail,
			Type:        domain.ResultTypeWorksheet,
		})
	}
	log.Debug("session %s: %d of %d hits are PDFs (%s)", req.SessionID, len(items), len(hits), c.backend.Name())
	return items, nil
}

// BuildQuery returns `<topic> class <grade> filetype:pdf`, dropping the class
// term for all grades.
func BuildQuery(topic string, grade domain.GradeFilter) string {
	parts := []string{strings.TrimSpace(topic)}
	if !grade.IsAll() {
		parts = append(parts, "class "+strconv.Itoa(int(grade)))
	}
	parts = append(parts, "filetype:pdf")
	return strings.Join(parts, " ")
}

// IsPDF reports whether link's path ends in .pdf, ignoring case.
func IsPDF(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}
