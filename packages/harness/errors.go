package harness

import "fmt"

// StatusMismatchError reports that a response status differed from the
// one the request expected. Body holds the response body so the failure
// can be diagnosed without re-running the request.
type StatusMismatchError struct {
	// Expected is the exact expected status, or 0 when a range was
	// expected instead.
	Expected int
	// Range is "2xx" or "non-2xx" when the expectation was a success or
	// failure window rather than an exact code.
	Range  string
	Actual int
	Body   []byte
}

func (e *StatusMismatchError) Error() string {
	expected := e.Range
	if expected == "" {
		expected = fmt.Sprintf("%d", e.Expected)
	}
	msg := fmt.Sprintf("expected status %s, got %d", expected, e.Actual)
	if len(e.Body) > 0 {
		msg += fmt.Sprintf(" (body: %s)", truncate(e.Body, 512))
	}
	return msg
}

// ReuseError reports that a request builder was dispatched more than
// once. Builders are single-shot: their body buffers are consumed by the
// first dispatch.
type ReuseError struct {
	Method string
	Path   string
}

func (e *ReuseError) Error() string {
	return fmt.Sprintf("request %s %s was already dispatched; builders are single-shot", e.Method, e.Path)
}

// ValidationError reports malformed builder input detected before
// dispatch, such as a multipart body with no parts.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Reason
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
