package request

import (
	"errors"
	"fmt"
	"net/http"
)

// Transport error categories, reachable from *HTTPError with errors.Is
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInternalServerError = errors.New("internal server error")
	ErrUnknownResponse     = errors.New("unknown response")
)

// HTTPError is returned for any response outside the 2xx success range. The
// body is never handed to a decoder.
type HTTPError struct {
	Service    string
	StatusCode int
	Body       []byte
	category   error
}

func newHTTPError(service string, statusCode int, body []byte) *HTTPError {
	return &HTTPError{
		Service:    service,
		StatusCode: statusCode,
		Body:       body,
		category:   categorise(statusCode),
	}
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %v: unsuccessful HTTP status code: %d raw response: %s",
		e.Service,
		e.category,
		e.StatusCode,
		e.Body)
}

// Unwrap returns the category of the failure
func (e *HTTPError) Unwrap() error {
	return e.category
}

func categorise(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return ErrInternalServerError
	default:
		return ErrUnknownResponse
	}
}
