package ai

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured = errors.New("completion api key not configured")
	ErrInvalidOutput = errors.New("model output did not match the expected shape")
	ErrMissingInput  = errors.New("task precondition not met")
)

// UpstreamAPIError is a non-success response from the completion API.
type UpstreamAPIError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamAPIError) Error() string {
	return fmt.Sprintf("completion api error: status=%d body=%s", e.StatusCode, e.Body)
}
