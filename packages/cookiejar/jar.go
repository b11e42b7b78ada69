package cookiejar

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

type cookieKey struct {
	domain string
	path   string
	name   string
}

type cookieEntry struct {
	value    string
	expires  time.Time // zero means session cookie
	hostOnly bool
	secure   bool
	httpOnly bool
}

// Jar stores cookies keyed by (domain, path, name). The zero value is not
// usable; construct with New.
type Jar struct {
	mu      sync.Mutex
	entries map[cookieKey]cookieEntry
	now     func() time.Time
}

func New() *Jar {
	return &Jar{
		entries: make(map[cookieKey]cookieEntry),
		now:     time.Now,
	}
}

// ApplyResponseHeaders parses every Set-Cookie header and inserts or
// replaces the matching entries. A replacement with an empty value or a
// non-positive Max-Age carries deletion semantics: the entry expires
// immediately and disappears on the next access.
func (j *Jar) ApplyResponseHeaders(host string, header http.Header) {
	// (&http.Response{}).Cookies parses each Set-Cookie line with the same
	// stdlib parser as http.ParseSetCookie (Go 1.23+), skipping invalid
	// lines; used here so the package builds on Go 1.21.
	resp := http.Response{Header: header}
	for _, cookie := range resp.Cookies() {
		j.SetCookie(host, cookie)
	}
}

// SetCookie stores a single cookie as if it arrived in a response from
// host. Existing entries with the same (domain, path, name) are replaced.
func (j *Jar) SetCookie(host string, cookie *http.Cookie) {
	key := cookieKey{
		domain: strings.ToLower(host),
		path:   cookie.Path,
		name:   cookie.Name,
	}
	entry := cookieEntry{
		value:    cookie.Value,
		hostOnly: true,
		secure:   cookie.Secure,
		httpOnly: cookie.HttpOnly,
	}

	if domain := strings.TrimPrefix(cookie.Domain, "."); domain != "" {
		key.domain = strings.ToLower(domain)
		entry.hostOnly = false
	}
	if key.path == "" || !strings.HasPrefix(key.path, "/") {
		key.path = "/"
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	switch {
	case cookie.MaxAge > 0:
		entry.expires = now.Add(time.Duration(cookie.MaxAge) * time.Second)
	case cookie.MaxAge < 0:
		// Max-Age=0 on the wire parses as -1: delete now.
		entry.expires = now.Add(-time.Second)
	case !cookie.Expires.IsZero():
		entry.expires = cookie.Expires
	}

	j.entries[key] = entry
	j.pruneLocked(now)
}

// HeaderForRequest returns the Cookie header value for a request to the
// given host and path, or "" when no stored cookie matches. Secure-only
// cookies are withheld on non-secure transports. Expired cookies are
// pruned as a side effect.
func (j *Jar) HeaderForRequest(host, path string, secure bool) string {
	host = strings.ToLower(host)
	if path == "" {
		path = "/"
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.pruneLocked(j.now())

	type match struct {
		key   cookieKey
		value string
	}
	var matches []match
	for key, entry := range j.entries {
		if entry.secure && !secure {
			continue
		}
		if !domainMatches(host, key.domain, entry.hostOnly) {
			continue
		}
		if !pathMatches(path, key.path) {
			continue
		}
		matches = append(matches, match{key: key, value: entry.value})
	}

	// Longest path first, then name, so output is stable across runs.
	sort.Slice(matches, func(i, k int) bool {
		pi, pk := matches[i].key.path, matches[k].key.path
		if len(pi) != len(pk) {
			return len(pi) > len(pk)
		}
		return matches[i].key.name < matches[k].key.name
	})

	pairs := make([]string, 0, len(matches))
	for _, m := range matches {
		pairs = append(pairs, m.key.name+"="+m.value)
	}
	return strings.Join(pairs, "; ")
}

// Clear removes every stored cookie.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = make(map[cookieKey]cookieEntry)
}

// Len reports the number of live (non-expired) cookies.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pruneLocked(j.now())
	return len(j.entries)
}

func (j *Jar) pruneLocked(now time.Time) {
	for key, entry := range j.entries {
		if !entry.expires.IsZero() && !entry.expires.After(now) {
			delete(j.entries, key)
		}
	}
}

func domainMatches(host, cookieDomain string, hostOnly bool) bool {
	if host == cookieDomain {
		return true
	}
	if hostOnly {
		return false
	}
	return strings.HasSuffix(host, "."+cookieDomain)
}

// pathMatches implements RFC 6265 section 5.1.4 path matching.
func pathMatches(requestPath, cookiePath string) bool {
	if requestPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}
