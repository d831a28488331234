package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// JiraError represents a non-2xx response from the Jira API.
// It is only produced when strict status checking is enabled on the client.
type JiraError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string

	// Messages and FieldErrors are populated from Jira's standard error body:
	// {"errorMessages": [...], "errors": {"field": "reason"}}.
	Messages    []string
	FieldErrors map[string]string
}

// Error implements the error interface
func (e *JiraError) Error() string {
	return fmt.Sprintf("Jira API error (status %d): %s", e.StatusCode, e.Message)
}

// NewJiraError creates a new JiraError
func NewJiraError(statusCode int, message string) *JiraError {
	return &JiraError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// FromResponse builds a JiraError from a response body. Jira's structured
// error body is used for the message when present, the raw body otherwise.
func FromResponse(method, url string, statusCode int, body []byte) *JiraError {
	e := &JiraError{
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
	}

	var payload struct {
		ErrorMessages []string          `json:"errorMessages"`
		Errors        map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		e.Messages = payload.ErrorMessages
		e.FieldErrors = payload.Errors
	}

	var parts []string
	parts = append(parts, e.Messages...)
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		parts = append(parts, field+": "+e.FieldErrors[field])
	}
	switch {
	case len(parts) > 0:
		e.Message = strings.Join(parts, "; ")
	case len(body) > 0:
		e.Message = strings.TrimSpace(string(body))
	default:
		e.Message = http.StatusText(statusCode)
	}
	return e
}

// TransportError wraps a failure raised by the HTTP transport (network, DNS, TLS).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not valid JSON.
type ParseError struct {
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to decode response from %s (status %d): %v", e.URL, e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0 when err has none.
func StatusCode(err error) int {
	var jiraErr *JiraError
	if errors.As(err, &jiraErr) {
		return jiraErr.StatusCode
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from Jira.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 or 403 from Jira.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsTransport reports whether err came from the transport rather than Jira.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
