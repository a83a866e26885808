package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

type userKey struct{}

// WithUser returns a context carrying the authenticated user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the authenticated user id, or "".
func UserFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userKey{}).(string)
	return userID
}

// TokenAuth maps bearer tokens to user ids. The table can be replaced while
// the server is running.
type TokenAuth struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewTokenAuth creates an authenticator over tokens.
func NewTokenAuth(tokens map[string]string) *TokenAuth {
	a := &TokenAuth{}
	a.Set(tokens)
	return a
}

// Set replaces the token table.
func (a *TokenAuth) Set(tokens map[string]string) {
	copied := make(map[string]string, len(tokens))
	for token, userID := range tokens {
		if token != "" && userID != "" {
			copied[token] = userID
		}
	}
	a.mu.Lock()
	a.tokens = copied
	a.mu.Unlock()
}

// Len returns the number of configured tokens.
func (a *TokenAuth) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.tokens)
}

// Lookup returns the user id for token.
func (a *TokenAuth) Lookup(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	userID, ok := a.tokens[token]
	return userID, ok
}

// Authenticate resolves the request's token to a user id.
func (a *TokenAuth) Authenticate(r *http.Request) (string, error) {
	userID, ok := a.Lookup(requestToken(r))
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return userID, nil
}

// Middleware rejects unauthenticated requests with 401 and stores the user
// id in the request context.
func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.Authenticate(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="lessonscout"`)
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
	})
}

func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
