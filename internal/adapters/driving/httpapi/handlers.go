package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

const maxBodyBytes = 1 << 16

// submitResponse is returned as soon as a session is created.
type submitResponse struct {
	ID        string               `json:"id"`
	Query     string               `json:"query"`
	Grade     domain.GradeFilter   `json:"grade"`
	Status    domain.SessionStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
}

// submitBody is the optional JSON body of POST /search.
type submitBody struct {
	Query string              `json:"query"`
	Grade *domain.GradeFilter `json:"grade"`
}

type healthResponse struct {
	Status     string                 `json:"status"`
	Scheduler  *domain.SchedulerStats `json:"scheduler,omitempty"`
	Connectors []domain.ConnectorInfo `json:"connectors"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	query, grade, err := parseSubmit(r)
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := s.ports.Search.Submit(r.Context(), UserFromContext(r.Context()), query, grade)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		ID:        session.ID,
		Query:     session.Query,
		Grade:     session.Grade,
		Status:    session.Status,
		CreatedAt: session.CreatedAt,
	})
}

// parseSubmit reads query and grade from a JSON body, a form body, or the
// URL. A missing grade defaults to domain.DefaultGrade.
func parseSubmit(r *http.Request) (string, domain.GradeFilter, error) {
	if r.Method == http.MethodPost && isJSON(r) {
		var body submitBody
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
			return "", 0, fmt.Errorf("%w: decode body: %w", domain.ErrInvalidInput, err)
		}
		grade := domain.DefaultGrade
		if body.Grade != nil {
			grade = *body.Grade
		}
		return body.Query, grade, nil
	}

	grade, err := domain.ParseGrade(r.FormValue("grade"))
	if err != nil {
		return "", 0, err
	}
	return r.FormValue("query"), grade, nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.ports.Search.Session(r.Context(), UserFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.ports.Search.Events(r.Context(), UserFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []domain.SourceEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Connectors: s.ports.Search.Connectors()}
	if resp.Connectors == nil {
		resp.Connectors = []domain.ConnectorInfo{}
	}
	status := http.StatusOK
	if s.ports.Scheduler != nil {
		stats := s.ports.Scheduler.Stats()
		resp.Scheduler = &stats
		if !stats.Accepting {
			resp.Status = "draining"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}
