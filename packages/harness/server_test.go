package harness

import (
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong!"))
	})
	return mux
}

func TestServer_GetPing(t *testing.T) {
	server, err := New(pingHandler())
	require.NoError(t, err)
	defer server.Close()

	resp, err := server.Get("/ping").Do()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "pong!", text)
}

func TestServer_SocketMode(t *testing.T) {
	server, err := NewWithSocket(pingHandler())
	require.NoError(t, err)
	defer server.Close()

	assert.True(t, strings.HasPrefix(server.URL(), "http://127.0.0.1:"))

	resp, err := server.Get("/ping").Do()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "pong!", text)
}

func TestServer_SocketModeAbsoluteURL(t *testing.T) {
	server, err := NewWithSocket(pingHandler())
	require.NoError(t, err)
	defer server.Close()

	// The address is real: a plain http.Client can reach it.
	resp, err := http.Get(server.URL() + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_SocketPortReleasedOnClose(t *testing.T) {
	server, err := NewWithSocket(pingHandler())
	require.NoError(t, err)

	url := server.URL()
	require.NoError(t, server.Close())

	_, err = http.Get(url + "/ping")
	assert.Error(t, err)
}

func TestServer_VerbMethods(t *testing.T) {
	var gotMethod string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	})

	server, err := New(handler)
	require.NoError(t, err)
	defer server.Close()

	tests := []struct {
		method string
		build  func(string) *Request
	}{
		{http.MethodGet, server.Get},
		{http.MethodPost, server.Post},
		{http.MethodPut, server.Put},
		{http.MethodPatch, server.Patch},
		{http.MethodDelete, server.Delete},
		{http.MethodHead, server.Head},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			_, err := tt.build("/").Do()
			require.NoError(t, err)
			assert.Equal(t, tt.method, gotMethod)
		})
	}
}

func TestServer_DefaultHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Echo-Auth", r.Header.Get("Authorization"))
		w.Header().Set("Echo-Agent", r.Header.Get("User-Agent"))
	})

	server, err := NewWithConfig(handler, Config{
		DefaultHeaders: map[string]string{
			"Authorization": "Bearer default-token",
			"User-Agent":    "probekit",
		},
	})
	require.NoError(t, err)
	defer server.Close()

	resp, err := server.Get("/").Do()
	require.NoError(t, err)
	assert.Equal(t, "Bearer default-token", resp.Header("Echo-Auth"))
	assert.Equal(t, "probekit", resp.Header("Echo-Agent"))

	// A request's own header wins over the server default.
	resp, err = server.Get("/").Header("Authorization", "Bearer mine").Do()
	require.NoError(t, err)
	assert.Equal(t, "Bearer mine", resp.Header("Echo-Auth"))
}

func TestServer_AddHeaderAppliesToLaterRequests(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Echo-Tenant", r.Header.Get("X-Tenant"))
	})

	server, err := New(handler)
	require.NoError(t, err)
	defer server.Close()

	server.AddHeader("X-Tenant", "acme")

	resp, err := server.Get("/").Do()
	require.NoError(t, err)
	assert.Equal(t, "acme", resp.Header("Echo-Tenant"))
}

func TestServer_AddCookie(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(cookie.Value))
	})

	server, err := NewWithConfig(handler, Config{SaveCookies: true})
	require.NoError(t, err)
	defer server.Close()

	server.AddCookie(&http.Cookie{Name: "session", Value: "preset"})

	resp, err := server.Get("/").Do()
	require.NoError(t, err)
	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "preset", text)
}

func TestServer_ConcurrentDispatch(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "c-" + r.URL.Query().Get("n"), Value: "v", Path: "/"})
	})

	server, err := NewWithConfig(handler, Config{SaveCookies: true})
	require.NoError(t, err)
	defer server.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := server.Get("/").Query("n", string(rune('a'+n))).Do()
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 20, server.Jar().Len())
}

func TestServer_CloseIsIdempotent(t *testing.T) {
	server, err := New(pingHandler())
	require.NoError(t, err)

	require.NoError(t, server.Close())
	require.NoError(t, server.Close())
}
