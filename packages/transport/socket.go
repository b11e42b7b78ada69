package transport

import (
	"net"
	"net/http"
	"sync"
)

const (
	// DefaultBindAttempts bounds how often Socket retries binding an
	// ephemeral port, to tolerate transient OS-level port reuse races.
	DefaultBindAttempts = 3
	// DefaultMaxRedirects is the maximum number of redirects to follow
	// when redirect following is enabled.
	DefaultMaxRedirects = 10
)

// Socket serves the handler on an OS-assigned loopback port and delivers
// requests over a real TCP connection.
type Socket struct {
	listener  net.Listener
	server    *http.Server
	client    *http.Client
	baseURL   string
	closeOnce sync.Once
	closeErr  error
}

type socketConfig struct {
	followRedirects bool
	maxRedirects    int
	bindAttempts    int
}

// SocketOption configures a Socket transport.
type SocketOption func(*socketConfig)

// WithFollowRedirects controls whether the transport's client follows
// redirect responses. Disable it to assert on the redirect itself.
func WithFollowRedirects(follow bool) SocketOption {
	return func(c *socketConfig) {
		c.followRedirects = follow
	}
}

// WithMaxRedirects caps how many redirects are followed before the last
// response is returned as-is.
func WithMaxRedirects(max int) SocketOption {
	return func(c *socketConfig) {
		c.maxRedirects = max
	}
}

// WithBindAttempts overrides how many times binding an ephemeral port is
// attempted before giving up with a PortBindError.
func WithBindAttempts(attempts int) SocketOption {
	return func(c *socketConfig) {
		if attempts > 0 {
			c.bindAttempts = attempts
		}
	}
}

// NewSocket binds an ephemeral tcp4 loopback port and starts serving the
// handler on it. The accept loop runs until Close.
func NewSocket(handler http.Handler, opts ...SocketOption) (*Socket, error) {
	cfg := &socketConfig{
		followRedirects: true,
		maxRedirects:    DefaultMaxRedirects,
		bindAttempts:    DefaultBindAttempts,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	listener, err := bindEphemeralPort(cfg.bindAttempts)
	if err != nil {
		return nil, err
	}

	t := &Socket{
		listener: listener,
		server:   &http.Server{Handler: handler},
		baseURL:  "http://" + listener.Addr().String(),
	}
	t.client = &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !cfg.followRedirects {
				return http.ErrUseLastResponse
			}
			if len(via) >= cfg.maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	// Serve returns ErrServerClosed once Close is called.
	go func() { _ = t.server.Serve(listener) }()

	return t, nil
}

// listen is swapped out in tests to simulate port exhaustion.
var listen = net.Listen

func bindEphemeralPort(attempts int) (net.Listener, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		listener, err := listen("tcp4", "127.0.0.1:0")
		if err == nil {
			return listener, nil
		}
		lastErr = err
	}
	return nil, &PortBindError{Attempts: attempts, Err: lastErr}
}

func (t *Socket) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &ConnectionError{URL: req.URL.String(), Err: err}
	}
	return resp, nil
}

func (t *Socket) URL() string {
	return t.baseURL
}

// Addr returns the bound listener address.
func (t *Socket) Addr() net.Addr {
	return t.listener.Addr()
}

// Close stops the accept loop and releases the port. Safe to call more
// than once.
func (t *Socket) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.server.Close()
	})
	return t.closeErr
}
