package harness

import (
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/probekit/probekit/packages/cookiejar"
	"github.com/probekit/probekit/packages/transport"
)

// Server is the facade composing a transport strategy, a shared cookie
// jar, and server-wide defaults. Construct one per test and Close it when
// the test scope ends.
type Server struct {
	transport transport.Transport
	jar       *cookiejar.Jar
	config    Config
	logger    *zap.Logger
	baseURL   *url.URL

	mu             sync.Mutex
	defaultHeaders map[string]string

	closeOnce sync.Once
	closeErr  error
}

// New creates a server using the in-memory transport. No I/O is
// performed.
func New(handler http.Handler) (*Server, error) {
	return NewWithConfig(handler, Config{})
}

// NewWithSocket creates a server bound to an OS-assigned ephemeral TCP
// port. Construction performs a real bind and listen; it fails with a
// transport.PortBindError when no port could be bound.
func NewWithSocket(handler http.Handler) (*Server, error) {
	return NewWithConfig(handler, Config{Transport: TransportSocket})
}

// NewWithConfig creates a server with explicit configuration.
func NewWithConfig(handler http.Handler, config Config) (*Server, error) {
	var tr transport.Transport
	switch config.Transport {
	case TransportSocket:
		socket, err := transport.NewSocket(handler, config.socketOptions()...)
		if err != nil {
			return nil, err
		}
		tr = socket
	default:
		tr = transport.NewInMemory(handler)
	}

	baseURL, err := url.Parse(tr.URL())
	if err != nil {
		_ = tr.Close()
		return nil, err
	}

	s := &Server{
		transport:      tr,
		jar:            cookiejar.New(),
		config:         config,
		logger:         config.logger(),
		baseURL:        baseURL,
		defaultHeaders: make(map[string]string, len(config.DefaultHeaders)),
	}
	for k, v := range config.DefaultHeaders {
		s.defaultHeaders[k] = v
	}

	s.logger.Debug("test server created",
		zap.String("url", baseURL.String()),
		zap.Bool("socket", config.Transport == TransportSocket))

	return s, nil
}

// URL returns the server's base URL. In socket mode this is the real
// bound address, usable for constructing absolute URLs; in-memory mode
// returns a synthetic, unroutable address.
func (s *Server) URL() string {
	return s.baseURL.String()
}

// Close tears down the transport. In socket mode the ephemeral port is
// released before Close returns. Safe to call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.transport.Close()
	})
	return s.closeErr
}

// Jar exposes the server's shared cookie jar.
func (s *Server) Jar() *cookiejar.Jar {
	return s.jar
}

// ClearCookies removes every cookie from the shared jar.
func (s *Server) ClearCookies() {
	s.jar.Clear()
}

// AddCookie stores a cookie in the jar as if the server had set it.
func (s *Server) AddCookie(cookie *http.Cookie) {
	s.jar.SetCookie(s.baseURL.Hostname(), cookie)
}

// AddHeader adds a default header applied to every subsequent request.
// A request's own header with the same name wins.
func (s *Server) AddHeader(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultHeaders[name] = value
}

// Get builds a GET request for path.
func (s *Server) Get(path string) *Request { return s.newRequest(http.MethodGet, path) }

// Post builds a POST request for path.
func (s *Server) Post(path string) *Request { return s.newRequest(http.MethodPost, path) }

// Put builds a PUT request for path.
func (s *Server) Put(path string) *Request { return s.newRequest(http.MethodPut, path) }

// Patch builds a PATCH request for path.
func (s *Server) Patch(path string) *Request { return s.newRequest(http.MethodPatch, path) }

// Delete builds a DELETE request for path.
func (s *Server) Delete(path string) *Request { return s.newRequest(http.MethodDelete, path) }

// Head builds a HEAD request for path.
func (s *Server) Head(path string) *Request { return s.newRequest(http.MethodHead, path) }

func (s *Server) snapshotDefaultHeaders() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	headers := make(map[string]string, len(s.defaultHeaders))
	for k, v := range s.defaultHeaders {
		headers[k] = v
	}
	return headers
}
