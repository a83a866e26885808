package googlepdf

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/lessonscout/internal/connectors/web"
)

// DefaultSerpAPIEndpoint is the SerpAPI JSON search endpoint.
const DefaultSerpAPIEndpoint = "https://serpapi.com/search.json"

// SerpAPI queries Google through serpapi.com.
type SerpAPI struct {
	apiKey   string
	endpoint string
	client   *web.Client
}

// SerpAPIOption configures a SerpAPI backend.
type SerpAPIOption func(*serpAPIOptions)

type serpAPIOptions struct {
	endpoint string
	timeout  time.Duration
	client   *web.Client
}

// WithEndpoint overrides the SerpAPI endpoint.
func WithEndpoint(endpoint string) SerpAPIOption {
	return func(o *serpAPIOptions) { o.endpoint = endpoint }
}

// WithTimeout sets the per-request timeout. Zero keeps the default.
func WithTimeout(d time.Duration) SerpAPIOption {
	return func(o *serpAPIOptions) { o.timeout = d }
}

// WithClient replaces the HTTP client.
func WithClient(client *web.Client) SerpAPIOption {
	return func(o *serpAPIOptions) { o.client = client }
}

// NewSerpAPI creates a SerpAPI backend.
func NewSerpAPI(apiKey string, opts ...SerpAPIOption) *SerpAPI {
	o := serpAPIOptions{endpoint: DefaultSerpAPIEndpoint}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = web.NewClient(web.WithTimeout(o.timeout))
	}
	return &SerpAPI{apiKey: apiKey, endpoint: o.endpoint, client: o.client}
}

// Name returns "serpapi".
func (s *SerpAPI) Name() string {
	return "serpapi"
}

type serpResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Title     string `json:"title"`
		Link      string `json:"link"`
		Snippet   string `json:"snippet"`
		Thumbnail string `json:"thumbnail"`
	} `json:"organic_results"`
}

// Search runs query with engine=google.
func (s *SerpAPI) Search(ctx context.Context, query string) ([]Hit, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(numResults))
	params.Set("hl", language)
	params.Set("gl", country)
	params.Set("api_key", s.apiKey)

	sep := "?"
	if strings.Contains(s.endpoint, "?") {
		sep = "&"
	}

	var resp serpResponse
	if err := s.client.GetJSON(ctx, s.endpoint+sep+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" && len(resp.OrganicResults) == 0 {
		// SerpAPI reports "no results" as an error string with a 200.
		if strings.Contains(strings.ToLower(resp.Error), "hasn't returned any results") {
			return []Hit{}, nil
		}
		return nil, &serpError{msg: resp.Error}
	}

	hits := make([]Hit, 0, len(resp.OrganicResults))
	for _, r := range resp.OrganicResults {
		hits = append(hits, Hit{Title: r.Title, Link: r.Link, Snippet: r.Snippet, Thumbnail: r.Thumbnail})
	}
	return hits, nil
}

type serpError struct {
	msg string
}

func (e *serpError) Error() string {
	return "serpapi: " + e.msg
}
