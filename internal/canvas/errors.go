package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for the gateway error taxonomy.
var (
	// ErrUnauthenticated means no credentials are configured, or the
	// remote rejected them. Fatal to the current run only; the caller
	// should send the operator back through setup.
	ErrUnauthenticated = errors.New("not authenticated with Canvas")

	// ErrMalformedResponse means the remote returned a 2xx status but the
	// body was empty or not valid JSON.
	ErrMalformedResponse = errors.New("malformed response from Canvas")
)

// APIError is a non-2xx response from the Canvas API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canvas API error (status %d): %s", e.Status, e.Message)
}

// IsUnauthenticated reports whether err indicates missing or rejected
// credentials, either the sentinel or a 401 from the remote.
func IsUnauthenticated(err error) bool {
	if errors.Is(err, ErrUnauthenticated) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 401
}

// errorMessage digs a human-readable message out of a Canvas error body.
// Canvas uses either {"errors":[{"message":...}]} or {"message":...};
// anything else falls back to a generic status line.
func errorMessage(status int, body []byte) string {
	var multi struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &multi); err == nil && len(multi.Errors) > 0 && multi.Errors[0].Message != "" {
		return multi.Errors[0].Message
	}

	var single struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &single); err == nil && single.Message != "" {
		return single.Message
	}

	return fmt.Sprintf("request failed with status %d", status)
}
