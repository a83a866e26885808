package google

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/lessonscout/internal/connectors/web"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"unauthorised", &googleapi.Error{Code: http.StatusUnauthorized}, web.ErrUnauthorized},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, web.ErrForbidden},
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, web.ErrNotFound},
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, web.ErrRateLimited},
		{"server error", &googleapi.Error{Code: http.StatusBadGateway}, web.ErrUpstream},
		{
			"quota",
			&googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "dailyLimitExceeded"}}},
			ErrQuotaExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(fmt.Errorf("cse list: %w", tt.err))

			assert.ErrorIs(t, wrapped, tt.target)
			var gerr *googleapi.Error
			assert.ErrorAs(t, wrapped, &gerr, "original error is kept")
		})
	}
}

func TestWrapError_Passthrough(t *testing.T) {
	assert.NoError(t, WrapError(nil))

	plain := errors.New("dial tcp: refused")
	assert.Equal(t, plain, WrapError(plain))

	bad := &googleapi.Error{Code: http.StatusBadRequest}
	assert.Equal(t, bad, WrapError(bad))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsUnauthorized(&googleapi.Error{Code: http.StatusUnauthorized}))
	assert.True(t, IsUnauthorized(web.ErrUnauthorized))
	assert.True(t, IsForbidden(&googleapi.Error{Code: http.StatusForbidden}))
	assert.True(t, IsRateLimited(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.True(t, IsRateLimited(&web.StatusError{Code: http.StatusTooManyRequests}))
	assert.True(t, IsQuotaExceeded(&googleapi.Error{Code: http.StatusTooManyRequests,
		Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}}}))

	assert.False(t, IsUnauthorized(errors.New("other")))
	assert.False(t, IsQuotaExceeded(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, IsQuotaExceeded(nil))
}
