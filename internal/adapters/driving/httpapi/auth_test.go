package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

func TestTokenAuth_Lookup(t *testing.T) {
	auth := NewTokenAuth(map[string]string{"tok-a": "alice", "": "nobody", "tok-empty": ""})

	userID, ok := auth.Lookup("tok-a")
	assert.True(t, ok)
	assert.Equal(t, "alice", userID)

	_, ok = auth.Lookup("")
	assert.False(t, ok)
	_, ok = auth.Lookup("tok-empty")
	assert.False(t, ok)
	assert.Equal(t, 1, auth.Len())
}

func TestTokenAuth_Set_ReplacesTable(t *testing.T) {
	tokens := map[string]string{"old": "alice"}
	auth := NewTokenAuth(tokens)
	tokens["sneaky"] = "mallory"

	_, ok := auth.Lookup("sneaky")
	assert.False(t, ok, "table is copied")

	auth.Set(map[string]string{"new": "bob"})
	_, ok = auth.Lookup("old")
	assert.False(t, ok)
	userID, ok := auth.Lookup("new")
	assert.True(t, ok)
	assert.Equal(t, "bob", userID)
}

func TestRequestToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		query    string
		expected string
	}{
		{"bearer header", "Bearer abc", "", "abc"},
		{"lowercase scheme", "bearer abc", "", "abc"},
		{"query parameter", "", "?token=xyz", "xyz"},
		{"header wins", "Bearer abc", "?token=xyz", "abc"},
		{"basic scheme", "Basic dXNlcjpwYXNz", "?token=xyz", ""},
		{"none", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/search"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.expected, requestToken(req))
		})
	}
}

func TestTokenAuth_Middleware(t *testing.T) {
	auth := NewTokenAuth(map[string]string{"tok-a": "alice"})
	var seen string
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("rejects missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
		assert.JSONEq(t, `{"error":"unauthenticated"}`, rec.Body.String())
	})

	t.Run("passes user id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok-a")
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "alice", seen)
	})
}

func TestAuthenticate(t *testing.T) {
	auth := NewTokenAuth(nil)
	_, err := auth.Authenticate(httptest.NewRequest(http.MethodGet, "/?token=x", nil))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUserFromContext(t *testing.T) {
	assert.Equal(t, "", UserFromContext(context.Background()))
	assert.Equal(t, "bob", UserFromContext(WithUser(context.Background(), "bob")))
}
