package remote

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// ErrUnauthorized indicates rejected credentials.
var ErrUnauthorized = errors.New("unauthorised (invalid credentials)")

// maxErrorBody bounds the response text quoted in a StatusError.
const maxErrorBody = 512

// StatusError is a non-success HTTP response from a vendor API.
type StatusError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Backend, e.StatusCode, body)
}

// Is matches domain.ErrRateLimited for 429 and ErrUnauthorized for 401/403.
func (e *StatusError) Is(target error) bool {
	switch target {
	case domain.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
