package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is returned for any non-2xx backend response. Message holds
// the most readable description that could be extracted from the body.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a StatusError for a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// newStatusError extracts a human-readable message from an error response.
// It prefers a JSON {"error": ...} field, then the raw body text, then the
// HTTP status text.
func newStatusError(resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return &StatusError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		return &StatusError{StatusCode: resp.StatusCode, Message: text}
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}
