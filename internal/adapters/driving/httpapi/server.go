package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

const shutdownTimeout = 10 * time.Second

var log = logger.With("http")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("httpapi: search service is required")

// Ports aggregates the driving ports the HTTP server needs.
type Ports struct {
	// Search submits and reads sessions.
	Search driving.SearchService

	// Scheduler reports queue stats for /healthz. Optional.
	Scheduler driving.Scheduler
}

// Server serves the search API.
type Server struct {
	ports    Ports
	auth     *TokenAuth
	upgrader websocket.Upgrader
	handler  http.Handler
}

// NewServer creates a server authenticating requests with auth.
func NewServer(ports Ports, auth *TokenAuth) (*Server, error) {
	if ports.Search == nil {
		return nil, ErrMissingSearchService
	}
	if auth == nil {
		auth = NewTokenAuth(nil)
	}
	s := &Server{
		ports: ports,
		auth:  auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	protected := func(h http.HandlerFunc) http.Handler {
		return s.auth.Middleware(h)
	}

	mux.Handle("GET /search", protected(s.handleSubmit))
	mux.Handle("POST /search", protected(s.handleSubmit))
	mux.Handle("GET /search/{id}", protected(s.handleSession))
	mux.Handle("GET /search/{id}/events", protected(s.handleEvents))
	mux.Handle("GET /search/{id}/ws", protected(s.handleWS))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return noCache(mux)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// noCache sets the cache headers every response carries.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-transform")
		next.ServeHTTP(w, r)
	})
}
