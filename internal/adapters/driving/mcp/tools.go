package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

// SubmitInput is the input schema for the submit_search tool.
type SubmitInput struct {
	Query string `json:"query" jsonschema:"the topic to find learning resources for"`
	Grade string `json:"grade,omitempty" jsonschema:"grade 1-12 or all (default 5)"`
}

// SessionInput identifies a search session.
type SessionInput struct {
	ID string `json:"id" jsonschema:"the search session id returned by submit_search"`
}

// SessionOutput is a search session.
type SessionOutput struct {
	ID        string         `json:"id"`
	Query     string         `json:"query"`
	Grade     string         `json:"grade"`
	Status    string         `json:"status"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at,omitempty"`
	Done      bool           `json:"done"`
	Results   []ResultOutput `json:"results"`
}

// ResultOutput is one learning resource.
type ResultOutput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Image       string `json:"image,omitempty"`
	Type        string `json:"type"`
}

// EventsOutput lists a session's progress events.
type EventsOutput struct {
	Events []EventOutput `json:"events"`
	Count  int           `json:"count"`
}

// EventOutput is one per-source progress event.
type EventOutput struct {
	ID        string         `json:"id"`
	Seq       int64          `json:"seq"`
	Source    string         `json:"source"`
	Status    string         `json:"status"`
	CreatedAt string         `json:"created_at"`
	Results   []ResultOutput `json:"results"`
}

// toolset holds the tool and resource handlers for one user.
type toolset struct {
	search driving.SearchService
	userID string
}

func newToolset(search driving.SearchService, userID string) *toolset {
	return &toolset{search: search, userID: userID}
}

// registerTools registers all tool handlers with the MCP server.
func (t *toolset) registerTools(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name: "submit_search",
		Description: "Start an asynchronous search for educational resources (videos, " +
			"worksheets, lessons) on a topic. Returns a session id immediately; " +
			"poll get_search until done is true.",
	}, t.handleSubmit)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_search",
		Description: "Get the status of a search session and, once completed, its results",
	}, t.handleGet)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_search_events",
		Description: "List the per-source progress events of a search session",
	}, t.handleEvents)
}

// handleSubmit handles the submit_search tool invocation.
func (t *toolset) handleSubmit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmitInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	grade, err := domain.ParseGrade(input.Grade)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	session, err := t.search.Submit(ctx, t.userID, input.Query, grade)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, toSessionOutput(session), nil
}

// handleGet handles the get_search tool invocation.
func (t *toolset) handleGet(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	session, err := t.search.Session(ctx, t.userID, input.ID)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, toSessionOutput(session), nil
}

// handleEvents handles the list_search_events tool invocation.
func (t *toolset) handleEvents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, EventsOutput, error) {
	events, err := t.search.Events(ctx, t.userID, input.ID)
	if err != nil {
		return nil, EventsOutput{}, err
	}

	output := EventsOutput{
		Events: make([]EventOutput, len(events)),
		Count:  len(events),
	}
	for i := range events {
		output.Events[i] = EventOutput{
			ID:        events[i].ID,
			Seq:       events[i].Seq,
			Source:    events[i].Source,
			Status:    string(events[i].Status),
			CreatedAt: formatTime(events[i].CreatedAt),
			Results:   toResultOutputs(events[i].Payload),
		}
	}
	return nil, output, nil
}

func toSessionOutput(s *domain.SearchSession) SessionOutput {
	return SessionOutput{
		ID:        s.ID,
		Query:     s.Query,
		Grade:     s.Grade.String(),
		Status:    string(s.Status),
		CreatedAt: formatTime(s.CreatedAt),
		UpdatedAt: formatTime(s.UpdatedAt),
		Done:      s.Status.IsTerminal(),
		Results:   toResultOutputs(s.Result),
	}
}

func toResultOutputs(items []domain.ResultItem) []ResultOutput {
	out := make([]ResultOutput, len(items))
	for i, item := range items {
		out[i] = ResultOutput{
			Title:       item.Title,
			Description: item.Description,
			Link:        item.Link,
			Image:       item.Image,
			Type:        string(item.Type),
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
