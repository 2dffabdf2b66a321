package planka

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a non-JSON error body ends up in a message.
const maxErrorBody = 512

// APIError is returned when Planka cannot be reached or answers with a
// non-2xx status. StatusCode is zero for transport failures.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("planka %s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("planka %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a Planka 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// errorMessage extracts a human-readable message from an error response.
// Planka answers {"code": "E_NOT_FOUND", "message": "..."}; proxies in
// front of it may answer HTML or plain text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Code != "":
			return payload.Code
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

// ValidationError reports a response that does not have the shape of the
// entity it was decoded as.
type ValidationError struct {
	Entity string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s response: %v", e.Entity, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
