package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lessonscout/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

var log = logger.With("mcp")

// Server is the MCP server for lessonscout. Each user gets an mcp.Server whose
// tools act on that user's sessions.
type Server struct {
	ports *Ports

	mu      sync.Mutex
	servers map[string]*mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	return &Server{
		ports:   ports,
		servers: make(map[string]*mcp.Server),
	}, nil
}

// serverFor returns the mcp.Server for userID, creating it on first use.
func (s *Server) serverFor(userID string) *mcp.Server {
	s.mu.Lock()
	defer s.mu.Unlock()

	if srv, ok := s.servers[userID]; ok {
		return srv
	}

	impl := &mcp.Implementation{
		Name:    "lessonscout",
		Version: Version,
	}
	srv := mcp.NewServer(impl, nil)
	ts := newToolset(s.ports.Search, userID)
	ts.registerTools(srv)
	ts.registerResources(srv)
	s.servers[userID] = srv
	return srv
}

// Run starts the MCP server over stdio, acting as Ports.UserID.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	if s.ports.UserID == "" {
		return ErrMissingUser
	}
	return s.serverFor(s.ports.UserID).Run(ctx, &mcp.StdioTransport{})
}

// Handler returns a streamable HTTP handler. Requests must carry a bearer
// token known to auth; the token's user is the identity tools act as.
func (s *Server) Handler(auth *httpapi.TokenAuth) http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		userID := httpapi.UserFromContext(r.Context())
		if userID == "" {
			return nil
		}
		return s.serverFor(userID)
	}, nil)
	return auth.Middleware(handler)
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string, auth *httpapi.TokenAuth) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(auth),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	log.Info("listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
