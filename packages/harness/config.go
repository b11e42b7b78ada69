package harness

import (
	"go.uber.org/zap"

	"github.com/probekit/probekit/packages/transport"
)

// TransportMode selects how requests reach the handler. It is fixed for
// the lifetime of the server.
type TransportMode int

const (
	// TransportInMemory invokes the handler directly in-process.
	TransportInMemory TransportMode = iota
	// TransportSocket serves the handler on an ephemeral TCP port and
	// sends requests over a real connection.
	TransportSocket
)

// Config carries server-wide defaults. The zero value is a valid
// configuration: in-memory transport, no cookie saving, no default
// content type.
type Config struct {
	Transport TransportMode

	// SaveCookies enables browser-like cookie persistence across
	// requests from this server. Off by default; individually
	// overridable per request.
	SaveCookies bool

	// DefaultContentType is applied to requests that set a body without
	// an explicit content type. It takes precedence over the type a body
	// setter would otherwise infer.
	DefaultContentType string

	// DefaultHeaders are added to every request before the request's own
	// headers, which win on conflict.
	DefaultHeaders map[string]string

	// ExpectSuccessByDefault makes every dispatch fail with a
	// StatusMismatchError unless the response status is 2xx or the
	// request opted out with ExpectFailure.
	ExpectSuccessByDefault bool

	// FollowRedirects makes socket-mode requests follow redirect
	// responses instead of returning them as-is. In-memory mode never
	// follows redirects; the handler's response is returned verbatim.
	FollowRedirects bool

	// MaxRedirects caps redirect following. Zero means
	// transport.DefaultMaxRedirects.
	MaxRedirects int

	// BindAttempts bounds ephemeral port binding retries in socket mode.
	// Zero means transport.DefaultBindAttempts.
	BindAttempts int

	// Logger receives debug-level dispatch logging. Nil means no
	// logging.
	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c Config) socketOptions() []transport.SocketOption {
	opts := []transport.SocketOption{
		transport.WithFollowRedirects(c.FollowRedirects),
	}
	if c.MaxRedirects > 0 {
		opts = append(opts, transport.WithMaxRedirects(c.MaxRedirects))
	}
	if c.BindAttempts > 0 {
		opts = append(opts, transport.WithBindAttempts(c.BindAttempts))
	}
	return opts
}
