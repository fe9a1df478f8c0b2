package apiclient

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
)

// classify turns a non-2xx response into a typed error. The server's message
// is carried verbatim when it sent one.
func classify(status int, body []byte) error {
	message := ServerMessage(body)
	details := map[string]any{"status": status}

	var code pkgerrors.Code
	switch status {
	case http.StatusBadRequest:
		code = pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		code = pkgerrors.CodeForbidden
	case http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	default:
		code = pkgerrors.CodeDependency
	}
	if message != "" {
		details["server_message"] = message
	}
	return pkgerrors.New(code, message).WithDetails(details)
}

// ServerMessage extracts a user-facing message from an error body: a bare
// JSON string, the "message" (or "error") field of an object, otherwise the
// body text itself.
func ServerMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		for _, field := range []string{"message", "error"} {
			raw, ok := obj[field]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}

	return string(trimmed)
}

// Status returns the HTTP status carried by a classified error, or 0.
func Status(err error) int {
	typed := pkgerrors.As(err)
	if typed == nil {
		return 0
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return 0
	}
	status, _ := details["status"].(int)
	return status
}

// HasServerMessage reports whether err carries a message sent by the backend.
func HasServerMessage(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return false
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return false
	}
	msg, _ := details["server_message"].(string)
	return msg != ""
}
