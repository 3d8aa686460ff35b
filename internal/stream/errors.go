package stream

import (
	"fmt"
	"net/http"
)

// apiError carries the HTTP status a pipeline failure maps to. Handlers
// unwrap it with errors.As; anything else becomes a plain 500.
type apiError struct {
	status int
	msg    string
	cause  error
}

func (e *apiError) Error() string { return e.msg }
func (e *apiError) Unwrap() error { return e.cause }

func errInvalidInput(msg string) error {
	return &apiError{status: http.StatusBadRequest, msg: msg}
}

func errResolutionFailed(id string, cause error) error {
	return &apiError{
		status: http.StatusInternalServerError,
		msg:    fmt.Sprintf("failed to resolve audio stream for %q: %v", id, cause),
		cause:  cause,
	}
}

func errScratchFailed(id string, cause error) error {
	return &apiError{
		status: http.StatusInternalServerError,
		msg:    fmt.Sprintf("failed to allocate scratch storage for %q: %v", id, cause),
		cause:  cause,
	}
}

func errConversionFailed(id string, cause error) error {
	return &apiError{
		status: http.StatusInternalServerError,
		msg:    fmt.Sprintf("failed to convert audio for %q: %v", id, cause),
		cause:  cause,
	}
}
