package google

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/lessonscout/internal/connectors/web"
)

// ErrQuotaExceeded indicates the daily API quota was exceeded.
var ErrQuotaExceeded = errors.New("google: quota exceeded")

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return hasCode(err, http.StatusUnauthorized) || errors.Is(err, web.ErrUnauthorized)
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	return hasCode(err, http.StatusForbidden) || errors.Is(err, web.ErrForbidden)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return hasCode(err, http.StatusTooManyRequests) || errors.Is(err, web.ErrRateLimited)
}

// IsQuotaExceeded returns true if the error reports an exhausted quota.
// Google returns 403 or 429 with a quota reason for this case.
func IsQuotaExceeded(err error) bool {
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "dailyLimitExceeded", "quotaExceeded", "rateLimitExceeded":
			return true
		}
	}
	return false
}

// WrapError converts a Google API error to a more specific error type.
// The original error stays in the chain.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	if IsQuotaExceeded(err) {
		return errors.Join(ErrQuotaExceeded, web.ErrRateLimited, err)
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return errors.Join(web.ErrUnauthorized, err)
	case http.StatusForbidden:
		return errors.Join(web.ErrForbidden, err)
	case http.StatusNotFound:
		return errors.Join(web.ErrNotFound, err)
	case http.StatusTooManyRequests:
		return errors.Join(web.ErrRateLimited, err)
	default:
		if gerr.Code >= http.StatusInternalServerError {
			return errors.Join(web.ErrUpstream, err)
		}
		return err
	}
}

func hasCode(err error, code int) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	return false
}
