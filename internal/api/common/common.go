// Package common provides shared HTTP utility functions for API handlers.
package common

import (
	"net/http"
)

// WriteTextResponse writes a plain text response with the given status
func WriteTextResponse(w http.ResponseWriter, body string, statusCode int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}
