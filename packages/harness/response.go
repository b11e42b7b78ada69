package harness

import (
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/probekit/probekit/packages/codec"
)

// Response wraps a dispatched request's result. The raw body bytes are
// retained for the wrapper's lifetime, so every typed accessor can be
// called repeatedly.
type Response struct {
	statusCode int
	status     string
	header     http.Header
	body       []byte
	duration   time.Duration
	requestURL *url.URL
}

// StatusCode returns the numeric response status.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// Status returns the full status line, e.g. "200 OK".
func (r *Response) Status() string {
	return r.status
}

// Header returns the first value for the named header, or "".
func (r *Response) Header(name string) string {
	return r.header.Get(name)
}

// Headers returns the full response header map.
func (r *Response) Headers() http.Header {
	return r.header
}

// Bytes returns the raw body. The slice is a view of the retained
// buffer; callers must not mutate it.
func (r *Response) Bytes() []byte {
	return r.body
}

// Text returns the body as a string, or a codec.EncodingError when the
// bytes are not valid UTF-8.
func (r *Response) Text() (string, error) {
	if !utf8.Valid(r.body) {
		return "", &codec.EncodingError{Offset: firstInvalidUTF8(r.body)}
	}
	return string(r.body), nil
}

// JSON decodes the body as JSON into v. Decoding failures surface as a
// codec.DecodeError carrying the byte offset or field name.
func (r *Response) JSON(v any) error {
	return codec.JSON.Unmarshal(r.body, v)
}

// YAML decodes the body as YAML into v.
func (r *Response) YAML(v any) error {
	return codec.YAML.Unmarshal(r.body, v)
}

// Form decodes the body as an application/x-www-form-urlencoded value.
func (r *Response) Form() (url.Values, error) {
	var values url.Values
	if err := codec.Form.Unmarshal(r.body, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// JSONPath evaluates a gjson path against the body, e.g. "items.0.name".
func (r *Response) JSONPath(path string) gjson.Result {
	return gjson.GetBytes(r.body, path)
}

// Cookie returns the named cookie set by this response, or nil.
func (r *Response) Cookie(name string) *http.Cookie {
	for _, cookie := range r.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// Cookies returns every cookie set by this response's Set-Cookie headers.
func (r *Response) Cookies() []*http.Cookie {
	return (&http.Response{Header: r.header}).Cookies()
}

// Duration reports how long the round trip took.
func (r *Response) Duration() time.Duration {
	return r.duration
}

// RequestURL returns the URL the originating request was dispatched to.
func (r *Response) RequestURL() *url.URL {
	return r.requestURL
}

// ContentType returns the response's Content-Type header.
func (r *Response) ContentType() string {
	return r.header.Get("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.statusCode >= 300 && r.statusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.statusCode >= 400 && r.statusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.statusCode >= 500
}

func firstInvalidUTF8(b []byte) int64 {
	for i := 0; i < len(b); {
		c, size := utf8.DecodeRune(b[i:])
		if c == utf8.RuneError && size == 1 {
			return int64(i)
		}
		i += size
	}
	return -1
}
