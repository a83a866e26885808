// Package mcp provides an MCP (Model Context Protocol) server adapter for lessonscout.
// It lets AI assistants submit searches and follow their progress.
package mcp

import "errors"

var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")

	// ErrMissingUser is returned when stdio mode has no user to act as.
	ErrMissingUser = errors.New("mcp: a user id is required for stdio mode")
)
