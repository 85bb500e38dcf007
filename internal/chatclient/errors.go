package chatclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyMessage is returned by Submit when the input is blank after trimming.
	ErrEmptyMessage = errors.New("chatclient: message is empty")
	// ErrInFlight is returned by Submit and Reset while a request is outstanding.
	ErrInFlight = errors.New("chatclient: a request is already in flight")
)

// TransportError reports that the endpoint could not be reached, or kept
// answering with transient failures, until the attempts ran out.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx answer from the backend. Message carries the
// backend's {"error": ...} text when the body had one.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, msg)
}

// Temporary reports whether the status is worth retrying (5xx).
func (e *ServerError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}
