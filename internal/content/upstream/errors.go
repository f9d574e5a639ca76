package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnreachable is returned once every transport attempt has failed.
	ErrUnreachable = errors.New("upstream unreachable")
	// ErrRateLimited matches a StatusError carrying HTTP 429.
	ErrRateLimited = errors.New("upstream rate limited")
)

// StatusError reports a non-2xx upstream response. It is never retried.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s returned %d", e.Provider, e.StatusCode)
}

// Is lets errors.Is(err, ErrRateLimited) single out 429 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}
