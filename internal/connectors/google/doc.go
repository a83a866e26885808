// Package google provides shared infrastructure for Google API backed connectors.
//
// It contains:
//   - A service factory for the Custom Search JSON API
//   - Error handling for common Google API errors (401, 403, 404, 429)
//
// # Usage
//
//	svc, err := google.NewCustomSearchService(ctx, apiKey, "")
//	res, err := svc.Cse.List().Cx(cx).Q(query).Context(ctx).Do()
//	err = google.WrapError(err)
//
// Errors are mapped onto the sentinels of the web package so callers can test
// for rate limiting or credential problems the same way for every upstream.
package google
