package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned for any non-2xx response
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string

	// Body holds the start of the response body, useful for API error details
	Body []byte
}

// Error returns the error message
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, url, message string, body []byte) error {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Message:    message,
		Body:       body,
	}
}

// IsNotFound reports whether err is an HTTPError with status 404
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the status code carried by an HTTPError in err's chain, or 0
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
