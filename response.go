package graphqllite

import (
	"encoding/json"
	"strings"
)

// Response is the decoded body of a successful HTTP exchange. Data and
// Errors are both optional; a response with errors and partial data is
// returned as-is by Execute.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors ErrorList       `json:"errors,omitempty"`
}

// Error is one application-level error reported by the server inside a
// structurally successful response.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Location points into the operation text.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ErrorList is the ordered sequence of application-level errors. It
// implements error so the data-returning calls can surface all messages
// as one failure.
type ErrorList []Error

// Error joins every message with ", ", preserving server order.
func (e ErrorList) Error() string {
	return strings.Join(e.Messages(), ", ")
}

// Messages returns the raw messages in server order.
func (e ErrorList) Messages() []string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Message
	}
	return msgs
}
