package googlepdf

import (
	"context"

	"google.golang.org/api/customsearch/v1"

	"github.com/custodia-labs/lessonscout/internal/connectors/google"
	"github.com/custodia-labs/lessonscout/internal/connectors/web"
)

// CSE queries the Google Custom Search JSON API.
type CSE struct {
	svc     *customsearch.Service
	cx      string
	limiter *web.RateLimiter
}

// NewCSE creates a Custom Search backend for the engine cx.
func NewCSE(ctx context.Context, apiKey, cx string) (*CSE, error) {
	return newCSE(ctx, apiKey, cx, "")
}

func newCSE(ctx context.Context, apiKey, cx, endpoint string) (*CSE, error) {
	svc, err := google.NewCustomSearchService(ctx, apiKey, endpoint)
	if err != nil {
		return nil, err
	}
	return &CSE{
		svc:     svc,
		cx:      cx,
		limiter: web.NewRateLimiter(web.DefaultRateLimit),
	}, nil
}

// Name returns "cse".
func (c *CSE) Name() string {
	return "cse"
}

// Search runs query restricted to PDF files.
func (c *CSE) Search(ctx context.Context, query string) ([]Hit, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := c.svc.Cse.List().
		Cx(c.cx).
		Q(query).
		Num(numResults).
		Hl(language).
		Gl(country).
		FileType("pdf").
		Context(ctx).
		Do()
	if err != nil {
		err = google.WrapError(err)
		if google.IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, err
	}

	hits := make([]Hit, 0, len(res.Items))
	for _, item := range res.Items {
		hits = append(hits, Hit{Title: item.Title, Link: item.Link, Snippet: item.Snippet})
	}
	return hits, nil
}
