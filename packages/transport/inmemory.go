package transport

import (
	"net/http"
	"net/http/httptest"
)

// inMemoryBaseURL is the synthetic address in-memory requests are built
// against. It never resolves; the handler is invoked directly.
const inMemoryBaseURL = "http://testserver.local"

// InMemory dispatches requests straight to the handler without touching
// the network stack.
type InMemory struct {
	handler http.Handler
}

func NewInMemory(handler http.Handler) *InMemory {
	return &InMemory{handler: handler}
}

func (t *InMemory) RoundTrip(req *http.Request) (*http.Response, error) {
	// Handlers built for real servers expect these server-side fields,
	// which client-style requests leave empty.
	if req.RequestURI == "" {
		req.RequestURI = req.URL.RequestURI()
	}
	if req.RemoteAddr == "" {
		req.RemoteAddr = "192.0.2.1:1234"
	}

	recorder := httptest.NewRecorder()
	t.handler.ServeHTTP(recorder, req)

	resp := recorder.Result()
	resp.Request = req
	return resp, nil
}

func (t *InMemory) URL() string {
	return inMemoryBaseURL
}

func (t *InMemory) Close() error {
	return nil
}
