package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_RoundTrip(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/ping", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong!"))
	})

	tr := NewInMemory(handler)
	defer tr.Close()

	req := httptest.NewRequest("GET", tr.URL()+"/ping", nil)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong!", string(body))
}

func TestInMemory_NoNetworkAddress(t *testing.T) {
	tr := NewInMemory(http.NotFoundHandler())
	defer tr.Close()

	assert.Equal(t, inMemoryBaseURL, tr.URL())
}

func TestInMemory_HandlerSeesRequestBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"name":"widget"}`, string(body))
		w.WriteHeader(http.StatusCreated)
	})

	tr := NewInMemory(handler)
	defer tr.Close()

	req := httptest.NewRequest("POST", tr.URL()+"/things", strings.NewReader(`{"name":"widget"}`))
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
