// internal/app/system/backend/errors.go
package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnsupportedAction is returned by Resource.Act for an action the admin
// API has no endpoint for.
var ErrUnsupportedAction = errors.New("backend: unsupported action")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// PublicMessage is the text shown to the admin.
func (e *APIError) PublicMessage() string { return e.Message }

// Unauthorized reports whether the backend rejected the credentials.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PublicMessage hides network details from the admin.
func (e *TransportError) PublicMessage() string {
	return "Unable to reach the server. Please try again."
}

// IsUnauthorized reports whether err is a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Unauthorized()
}

// IsUnauthenticated reports whether err is a 401 from the backend. A 403
// from a mutation only denies that one change.
func IsUnauthenticated(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// messageFromBody extracts {"message": ...} or {"error": ...} (string, or an
// object with a message) from an error body. Falls back to the status text.
func messageFromBody(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload["message"].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		switch e := payload["error"].(type) {
		case string:
			if strings.TrimSpace(e) != "" {
				return strings.TrimSpace(e)
			}
		case map[string]any:
			if s, ok := e["message"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	if txt := http.StatusText(status); txt != "" {
		return txt
	}
	return fmt.Sprintf("Request failed with status %d", status)
}
