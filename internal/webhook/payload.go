// Package webhook turns JIRA issue-update deliveries into notifications.
//
// Payloads are read loosely: a missing key or a value of the wrong type reads
// as its zero value, so extraction always completes and only the absence of a
// ticket key rejects a delivery.
package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// IssueUpdatedEvent is the webhookEvent value of an issue update.
const IssueUpdatedEvent = "jira:issue_updated"

var (
	// ErrEmptyPayload is returned for an empty body or an empty JSON object.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrMalformedPayload is returned when the body is not a JSON object.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrMissingIssueKey is returned when no ticket key can be recovered.
	ErrMissingIssueKey = errors.New("invalid issue data")
)

// Payload is a decoded webhook body.
type Payload map[string]any

// DecodePayload parses body into a Payload.
func DecodePayload(body []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyPayload
	}

	var p Payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(p) == 0 {
		return nil, ErrEmptyPayload
	}
	return p, nil
}

// Event returns the webhookEvent field.
func (p Payload) Event() string {
	return str(p, "webhookEvent")
}

// HasChangelog reports whether the payload carries a changelog key at all.
func (p Payload) HasChangelog() bool {
	_, ok := p["changelog"]
	return ok
}

// object returns m[key] when it is a JSON object.
func object(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

// str returns m[key] when it is a JSON string.
func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

// list returns m[key] when it is a JSON array.
func list(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	v, _ := m[key].([]any)
	return v
}

// stringList returns the string elements of m[key].
func stringList(m map[string]any, key string) []string {
	var out []string
	for _, item := range list(m, key) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
