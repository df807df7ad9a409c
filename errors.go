package anthropic

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/praxislabs/anthropic-go/headers"
)

// APIError captures a structured error response from the API (status >= 400).
type APIError struct {
	Status    int
	Type      string
	Message   string
	RequestID string
}

// Error implements the error interface.
func (e APIError) Error() string {
	errType := e.Type
	if errType == "" {
		errType = "unknown_error"
	}
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", errType, msg)
}

// TransportError wraps a connection-level failure that occurred before or
// during streaming. The underlying error is available via Unwrap.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// ConfigError reports client misconfiguration detected before any request is made.
type ConfigError struct {
	Reason string
}

func (e ConfigError) Error() string { return "anthropic: " + e.Reason }

// decodeAPIError maps an error response body of the shape
// {"type": "...", "error": {"type": "...", "message": "..."}} to an APIError.
// Bodies that cannot be parsed keep the real HTTP status with a substitute
// message so callers never lose the status code.
func decodeAPIError(resp *http.Response) error {
	apiErr := APIError{
		Status:    resp.StatusCode,
		RequestID: resp.Header.Get(headers.RequestID),
	}
	data, _ := io.ReadAll(resp.Body)
	var payload struct {
		Type  string `json:"type"`
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if len(data) == 0 || json.Unmarshal(data, &payload) != nil || payload.Error.Message == "" {
		apiErr.Type = "unknown_error"
		apiErr.Message = "Failed to parse error response"
		return apiErr
	}
	apiErr.Message = payload.Error.Message
	apiErr.Type = payload.Error.Type
	if apiErr.Type == "" || apiErr.Type == "error" {
		apiErr.Type = payload.Type
	}
	return apiErr
}
