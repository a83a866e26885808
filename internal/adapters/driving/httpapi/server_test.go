package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

const testToken = "tok-alice"

func newTestServer(t *testing.T, search *mockSearchService, sched *mockScheduler) *Server {
	t.Helper()
	ports := Ports{Search: search}
	if sched != nil {
		ports.Scheduler = sched
	}
	s, err := NewServer(ports, NewTokenAuth(map[string]string{testToken: "alice"}))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if req.Header.Get("Authorization") == "" && !strings.Contains(req.URL.RawQuery, "token=") {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresSearch(t *testing.T) {
	_, err := NewServer(Ports{}, nil)
	assert.ErrorIs(t, err, ErrMissingSearchService)
}

func TestSubmit_Get(t *testing.T) {
	search := &mockSearchService{}
	s := newTestServer(t, search, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/search?query=volcanoes&grade=7", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache, no-transform", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{
		"id": "sess-1",
		"query": "volcanoes",
		"grade": 7,
		"status": "pending",
		"createdAt": "2025-03-01T10:00:00Z"
	}`, rec.Body.String())
	assert.Equal(t, []submitCall{{userID: "alice", query: "volcanoes", grade: 7}}, search.calls())
}

func TestSubmit_GradeDefaults(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		expected domain.GradeFilter
	}{
		{"missing grade", "/search?query=q", domain.DefaultGrade},
		{"all grades", "/search?query=q&grade=all", domain.GradeAll},
		{"token in query", "/search?query=q&grade=3&token=" + testToken, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &mockSearchService{}
			rec := do(t, newTestServer(t, search, nil), httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, search.calls(), 1)
			assert.Equal(t, tt.expected, search.calls()[0].grade)
		})
	}
}

func TestSubmit_PostBodies(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		search := &mockSearchService{}
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"fractions","grade":"all"}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		rec := do(t, newTestServer(t, search, nil), req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []submitCall{{userID: "alice", query: "fractions", grade: domain.GradeAll}}, search.calls())
	})

	t.Run("json without grade", func(t *testing.T) {
		search := &mockSearchService{}
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"fractions"}`))
		req.Header.Set("Content-Type", "application/json")

		rec := do(t, newTestServer(t, search, nil), req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.DefaultGrade, search.calls()[0].grade)
	})

	t.Run("form", func(t *testing.T) {
		search := &mockSearchService{}
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("query=fractions&grade=4"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := do(t, newTestServer(t, search, nil), req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.GradeFilter(4), search.calls()[0].grade)
	})
}

func TestSubmit_Errors(t *testing.T) {
	tests := []struct {
		name      string
		req       func() *http.Request
		submitErr error
		status    int
		called    bool
	}{
		{
			name:   "unauthenticated",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/search?query=q", nil)
				r.Header.Set("Authorization", "Bearer nope")
				return r
			},
			status: http.StatusUnauthorized,
		},
		{
			name:   "bad grade",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodGet, "/search?query=q&grade=13", nil) },
			status: http.StatusBadRequest,
		},
		{
			name: "bad json",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
			status: http.StatusBadRequest,
		},
		{
			name:      "missing query",
			req:       func() *http.Request { return httptest.NewRequest(http.MethodGet, "/search", nil) },
			submitErr: fmt.Errorf("%w: query is required", domain.ErrInvalidInput),
			status:    http.StatusBadRequest,
			called:    true,
		},
		{
			name:      "persistence failure",
			req:       func() *http.Request { return httptest.NewRequest(http.MethodGet, "/search?query=q", nil) },
			submitErr: fmt.Errorf("%w: disk full", domain.ErrPersistence),
			status:    http.StatusInternalServerError,
			called:    true,
		},
		{
			name:      "scheduler stopped",
			req:       func() *http.Request { return httptest.NewRequest(http.MethodGet, "/search?query=q", nil) },
			submitErr: domain.ErrSchedulerStopped,
			status:    http.StatusServiceUnavailable,
			called:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &mockSearchService{submitErr: tt.submitErr}
			rec := do(t, newTestServer(t, search, nil), tt.req())

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.called, len(search.calls()) == 1)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			assert.NotContains(t, body.Error, "disk full", "internal errors are not echoed")
		})
	}
}

func TestSession(t *testing.T) {
	search := &mockSearchService{session: &domain.SearchSession{
		ID:     "sess-1",
		UserID: "alice",
		Query:  "volcanoes",
		Grade:  5,
		Status: domain.SessionCompleted,
		Result: []domain.ResultItem{{Title: "Volcanoes", Link: "https://x", Type: domain.ResultTypeVideo}},
	}}

	rec := do(t, newTestServer(t, search, nil), httptest.NewRequest(http.MethodGet, "/search/sess-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.SearchSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.SessionCompleted, got.Status)
	require.Len(t, got.Result, 1)
	assert.Equal(t, domain.ResultTypeVideo, got.Result[0].Type)
}

func TestSession_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("session x: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{errors.New("db locked"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			search := &mockSearchService{sessionErr: tt.err, eventsErr: tt.err}
			s := newTestServer(t, search, nil)

			assert.Equal(t, tt.status, do(t, s, httptest.NewRequest(http.MethodGet, "/search/x", nil)).Code)
			assert.Equal(t, tt.status, do(t, s, httptest.NewRequest(http.MethodGet, "/search/x/events", nil)).Code)
		})
	}
}

func TestEvents(t *testing.T) {
	search := &mockSearchService{events: []domain.SourceEvent{
		{ID: "e1", Seq: 1, SessionID: "sess-1", Source: "khanacademy", Status: domain.EventStarted},
		{ID: "e2", Seq: 2, SessionID: "sess-1", Source: "khanacademy", Status: domain.EventCompleted},
	}}

	rec := do(t, newTestServer(t, search, nil), httptest.NewRequest(http.MethodGet, "/search/sess-1/events", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []domain.SourceEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "e2", got[1].ID)
}

func TestEvents_EmptyIsArray(t *testing.T) {
	rec := do(t, newTestServer(t, &mockSearchService{}, nil), httptest.NewRequest(http.MethodGet, "/search/sess-1/events", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	search := &mockSearchService{connectors: []domain.ConnectorInfo{{Name: "ck12", Class: domain.ClassExclusive}}}

	t.Run("accepting", func(t *testing.T) {
		sched := &mockScheduler{stats: domain.SchedulerStats{Capacity: 10, Queued: 2, Running: 1, Accepting: true}}
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		newTestServer(t, search, sched).Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "no token needed")
		assert.JSONEq(t, `{
			"status": "ok",
			"scheduler": {"capacity": 10, "queued": 2, "running": 1, "processed": 0, "accepting": true},
			"connectors": [{"name": "ck12", "class": "exclusive-sequential"}]
		}`, rec.Body.String())
	})

	t.Run("draining", func(t *testing.T) {
		sched := &mockScheduler{stats: domain.SchedulerStats{Capacity: 10}}
		rec := httptest.NewRecorder()
		newTestServer(t, search, sched).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"draining"`)
	})
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t, &mockSearchService{}, nil), httptest.NewRequest(http.MethodDelete, "/search/sess-1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
