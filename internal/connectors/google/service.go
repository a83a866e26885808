package google

import (
	"context"
	"errors"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// ErrMissingAPIKey is returned when no API key is supplied.
var ErrMissingAPIKey = errors.New("google: api key is required")

// NewCustomSearchService creates a Custom Search API service authenticated by apiKey.
// A non-empty endpoint overrides the API base URL.
func NewCustomSearchService(ctx context.Context, apiKey, endpoint string) (*customsearch.Service, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return customsearch.NewService(ctx, opts...)
}
