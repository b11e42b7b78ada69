// Package transport abstracts how the test harness delivers an HTTP
// request to the service under test.
//
// Two strategies exist, chosen once when the server is constructed:
//
//   - InMemory invokes the handler directly in-process, with no sockets
//     and no wire serialization.
//   - Socket binds an ephemeral TCP port, runs a real accept loop, and
//     round-trips requests over the wire. Use it for tests that need
//     absolute URLs, redirects, or cross-process behavior.
package transport
