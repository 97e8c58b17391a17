package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnavailable = errors.New("backend unavailable")

// APIError is a non-2xx backend response reduced to one display message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error [%d]: %s", e.StatusCode, e.Message)
}

// ErrorMessage normalizes a parsed backend error body into one string.
// It understands {detail}, {non_field_errors: [...]} and per-field maps
// ({field: ["msg", ...]}). Field entries are sorted by name and joined by " | ".
// It returns "" when nothing usable is found.
func ErrorMessage(body map[string]any) string {
	for _, key := range []string{"detail", "message", "error"} {
		if v, ok := body[key]; ok {
			if msg := strings.Join(messagesOf(v), " | "); msg != "" {
				return msg
			}
		}
	}

	if v, ok := body["non_field_errors"]; ok {
		if msg := strings.Join(messagesOf(v), " | "); msg != "" {
			return msg
		}
	}

	fields := make([]string, 0, len(body))
	for k := range body {
		switch k {
		case "detail", "message", "error", "non_field_errors":
			continue
		}
		fields = append(fields, k)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs := messagesOf(body[field])
		if len(msgs) == 0 {
			continue
		}
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return strings.Join(parts, " | ")
}

func messagesOf(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, messagesOf(item)...)
		}
		return out
	case map[string]any:
		if msg := ErrorMessage(val); msg != "" {
			return []string{msg}
		}
		return nil
	default:
		return []string{fmt.Sprint(val)}
	}
}

// ExtractErrorMessage decodes a raw error body and normalizes it, falling back
// to a generic message carrying the status code.
func ExtractErrorMessage(statusCode int, raw []byte) string {
	fallback := fmt.Sprintf("Request failed with status %d", statusCode)

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return fallback
	}

	var msg string
	switch val := body.(type) {
	case map[string]any:
		msg = ErrorMessage(val)
	case []any, string:
		msg = strings.Join(messagesOf(val), " | ")
	}
	if msg == "" {
		return fallback
	}
	return msg
}
