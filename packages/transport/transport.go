package transport

import (
	"fmt"
	"net/http"
)

// Transport delivers one HTTP request and returns the raw response.
// Implementations are fixed for the lifetime of the server that owns them.
type Transport interface {
	RoundTrip(req *http.Request) (*http.Response, error)
	// URL returns the base URL requests are addressed to. For the
	// in-memory strategy this is a synthetic, unroutable address.
	URL() string
	Close() error
}

// PortBindError reports that no free ephemeral port could be bound within
// the allowed number of attempts.
type PortBindError struct {
	Attempts int
	Err      error
}

func (e *PortBindError) Error() string {
	return fmt.Sprintf("no free ephemeral port after %d attempts: %v", e.Attempts, e.Err)
}

func (e *PortBindError) Unwrap() error {
	return e.Err
}

// ConnectionError reports a socket-mode transport failure (connection
// refused, reset, and similar). It is surfaced to the caller and never
// retried: a test failure should be visible, not masked.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
