package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for lessonscout resources.
	uriScheme = "lessonscout://"

	recentSessionsLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (t *toolset) registerResources(srv *mcp.Server) {
	// Static resource for the user's recent sessions.
	srv.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "Your most recent search sessions",
		MIMEType:    "application/json",
	}, t.handleSessionsResource)

	// Static resource for the registered content sources.
	srv.AddResource(&mcp.Resource{
		URI:         uriScheme + "connectors",
		Name:        "connectors",
		Description: "Content sources searched for every query",
		MIMEType:    "application/json",
	}, t.handleConnectorsResource)

	// Template for a single session.
	srv.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}",
		Name:        "session",
		Description: "A search session with its results",
		MIMEType:    "application/json",
	}, t.handleSessionResource)
}

// handleSessionsResource returns the user's recent sessions without results.
func (t *toolset) handleSessionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sessions, err := t.search.Sessions(ctx, t.userID, recentSessionsLimit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	infos := make([]SessionOutput, len(sessions))
	for i := range sessions {
		infos[i] = toSessionOutput(&sessions[i])
		infos[i].Results = []ResultOutput{}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleConnectorsResource returns the registered sources.
func (t *toolset) handleConnectorsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos := t.search.Connectors()
	if infos == nil {
		infos = []domain.ConnectorInfo{}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleSessionResource returns one session including its results.
func (t *toolset) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract sessionId from URI: lessonscout://sessions/{sessionId}
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	session, err := t.search.Session(ctx, t.userID, sessionID)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return jsonResource(req.Params.URI, toSessionOutput(session))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like lessonscout://sessions/{sessionId}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
