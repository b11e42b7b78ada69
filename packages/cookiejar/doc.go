// Package cookiejar implements a browser-like cookie store for the test
// harness.
//
// Cookies enter the jar only by applying Set-Cookie response headers, and
// leave it only through expiry or an explicit Clear. The jar is safe for
// concurrent use from parallel requests against the same server.
//
// Domain matching uses a simplified RFC 6265 model: cookies without a
// Domain attribute are host-only (exact match), cookies with one match the
// host itself or any subdomain of it.
package cookiejar
