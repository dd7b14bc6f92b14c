package apiclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// TransportError reports that a request produced no usable answer.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("apiclient: %s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("apiclient: %s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NotFoundError reports a 404 answer for an item scoped request.
type NotFoundError struct {
	Method  string
	Path    string
	Payload map[string]any
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("apiclient: %s %s: not found", e.Method, e.Path)
}

// StatusError reports a non-2xx answer whose body decoded as a JSON object.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Payload    map[string]any
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("apiclient: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
	}
	return fmt.Sprintf("apiclient: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Message returns the human readable message carried by the payload, if any.
//
// The backend uses `error` on its auth endpoints and `detail` on resource
// endpoints; field validation errors are flattened into "field: message".
func (e *StatusError) Message() string {
	if e == nil || len(e.Payload) == 0 {
		return ""
	}
	for _, key := range []string{"error", "detail", "message"} {
		if msg := stringValue(e.Payload[key]); msg != "" {
			return msg
		}
	}

	fields := make([]string, 0, len(e.Payload))
	for field := range e.Payload {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if msg := stringValue(e.Payload[field]); msg != "" {
			return field + ": " + msg
		}
	}
	return ""
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		for _, item := range v {
			if msg := stringValue(item); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// IsNotFound reports whether err carries a 404 answer.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// PayloadMessage extracts the backend message from a StatusError or NotFoundError.
func PayloadMessage(err error) string {
	var status *StatusError
	if errors.As(err, &status) {
		return status.Message()
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return (&StatusError{Payload: nf.Payload}).Message()
	}
	return ""
}
