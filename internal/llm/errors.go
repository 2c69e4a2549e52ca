package llm

import "errors"

var (
	// ErrNotConfigured indicates no API key is available for the backend.
	// No network call is attempted when this is returned.
	ErrNotConfigured = errors.New("llm api key not configured")

	// ErrTimeout indicates the completion exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrEmptyResponse indicates the backend answered with no text.
	ErrEmptyResponse = errors.New("llm returned empty response")

	// ErrBackend indicates the completion call failed (transport or API error).
	ErrBackend = errors.New("llm backend call failed")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")
)

// IsBackendError reports whether err is a backend-side failure: a transport
// or API error, a timeout, or an empty completion. Such failures are safe for
// an outer caller to retry.
func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackend) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrEmptyResponse)
}
