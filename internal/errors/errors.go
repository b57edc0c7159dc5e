// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any HTTPStatusError carrying a 404.
var ErrNotFound = errors.New("not found")

// HTTPStatusError is returned when the API answered with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf("API Error: %d - %s", e.StatusCode, msg)
}

// Is reports a 404 as ErrNotFound.
func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// NetworkError is returned when a request never produced a response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "Network error: Unable to connect to GitHub API"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UnexpectedError covers every failure that is neither a status nor a transport error.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return "An unexpected error occurred"
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// ErrInvalidPage is returned when a list page number is below 1.
type ErrInvalidPage struct {
	Page int
}

func (e *ErrInvalidPage) Error() string {
	return fmt.Sprintf("invalid page %d, must be at least 1", e.Page)
}

// ErrInvalidPageSize is returned when a page size falls outside 1..100.
type ErrInvalidPageSize struct {
	PageSize int
}

func (e *ErrInvalidPageSize) Error() string {
	return fmt.Sprintf("invalid page size %d, must be between 1 and 100", e.PageSize)
}

// Message returns the human-readable text shown for err.
// Errors outside the taxonomy are reported as unexpected.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *HTTPStatusError
	var netErr *NetworkError
	var unexpectedErr *UnexpectedError
	var pageErr *ErrInvalidPage
	var sizeErr *ErrInvalidPageSize
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Error()
	case errors.As(err, &netErr):
		return netErr.Error()
	case errors.As(err, &pageErr):
		return pageErr.Error()
	case errors.As(err, &sizeErr):
		return sizeErr.Error()
	case errors.As(err, &unexpectedErr):
		return unexpectedErr.Error()
	default:
		return (&UnexpectedError{Err: err}).Error()
	}
}
