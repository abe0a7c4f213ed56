package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is returned when the server responded with a non-2xx status.
// Message is extracted from the response body: a JSON object with a
// "message" field when present, the raw text body otherwise.
type HTTPError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Retryable reports whether the failure is worth retrying from the
// caller's point of view. 4xx responses indicate a request the server
// understood and rejected; resending the same payload will not help.
func (e *HTTPError) Retryable() bool {
	return e.Status >= 500
}

// NetworkError is returned when no HTTP response was received at all
// (connection refused, DNS failure, transport timeout).
type NetworkError struct {
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap exposes the underlying transport error for errors.Is/As.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// errorMessage extracts a human-readable message from an error response
// body. Server errors carry a JSON body with at least a "message" field;
// anything else falls back to the body text, then to the status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}
