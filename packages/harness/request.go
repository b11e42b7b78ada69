package harness

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/probekit/probekit/packages/codec"
)

type bodyKind int

const (
	bodyEmpty bodyKind = iota
	bodyRaw
	bodyJSON
	bodyYAML
	bodyForm
	bodyMultipart
)

type queryParam struct {
	key   string
	value string
}

// Request accumulates one HTTP request's parameters. All mutators return
// the same builder for chaining. A builder is single-shot: Do consumes it
// exactly once, and a second Do fails with a ReuseError.
type Request struct {
	server *Server
	ctx    context.Context
	method string
	path   string

	query   []queryParam
	headers http.Header
	cookies []*http.Cookie

	bodyKind       bodyKind
	rawBody        []byte
	rawContentType string
	bodyValue      any
	formValues     url.Values
	multipart      *codec.MultipartForm
	contentType    string

	expectedStatus int
	expectSuccess  *bool

	saveCookies *bool
	clearJar    bool

	mu         sync.Mutex
	dispatched bool
}

func (s *Server) newRequest(method, path string) *Request {
	return &Request{
		server:  s,
		ctx:     context.Background(),
		method:  method,
		path:    path,
		headers: make(http.Header),
	}
}

// WithContext attaches a context to the dispatched request.
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Header sets a header, replacing any previous value for the name.
func (r *Request) Header(name, value string) *Request {
	r.headers.Set(name, value)
	return r
}

// AddHeader appends a header value, keeping previous values for the name.
func (r *Request) AddHeader(name, value string) *Request {
	r.headers.Add(name, value)
	return r
}

// ContentType explicitly overrides the request's content type. An
// explicit value is never replaced by a body setter or the server
// default.
func (r *Request) ContentType(contentType string) *Request {
	r.contentType = contentType
	return r
}

// Query appends one query parameter. Parameters keep the order they were
// added in and are percent-encoded on dispatch.
func (r *Request) Query(key, value string) *Request {
	r.query = append(r.query, queryParam{key: key, value: value})
	return r
}

// QueryPairs appends query parameters from alternating key/value
// arguments.
func (r *Request) QueryPairs(pairs ...string) *Request {
	for i := 0; i+1 < len(pairs); i += 2 {
		r.query = append(r.query, queryParam{key: pairs[i], value: pairs[i+1]})
	}
	return r
}

// AddCookie attaches a cookie to this request only, independent of the
// server's jar.
func (r *Request) AddCookie(cookie *http.Cookie) *Request {
	r.cookies = append(r.cookies, cookie)
	return r
}

// BearerAuth sets an Authorization header with a bearer token.
func (r *Request) BearerAuth(token string) *Request {
	r.headers.Set("Authorization", "Bearer "+token)
	return r
}

// BasicAuth sets an Authorization header with basic credentials.
func (r *Request) BasicAuth(username, password string) *Request {
	encoded := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	r.headers.Set("Authorization", "Basic "+encoded)
	return r
}

// Body sets a raw byte body with an explicit content type, which is
// never replaced by the server default.
func (r *Request) Body(contentType string, body []byte) *Request {
	r.bodyKind = bodyRaw
	r.rawBody = body
	if contentType != "" {
		r.contentType = contentType
	}
	return r
}

// Text sets a text/plain body. Unlike Body, the text/plain type is only
// inferred, so a server-wide default content type still wins.
func (r *Request) Text(body string) *Request {
	r.bodyKind = bodyRaw
	r.rawBody = []byte(body)
	r.rawContentType = "text/plain"
	return r
}

// JSON sets a body serialized as JSON on dispatch. The content type
// becomes application/json unless explicitly overridden.
func (r *Request) JSON(v any) *Request {
	r.bodyKind = bodyJSON
	r.bodyValue = v
	return r
}

// YAML sets a body serialized as YAML on dispatch.
func (r *Request) YAML(v any) *Request {
	r.bodyKind = bodyYAML
	r.bodyValue = v
	return r
}

// Form sets an application/x-www-form-urlencoded body.
func (r *Request) Form(values url.Values) *Request {
	r.bodyKind = bodyForm
	r.formValues = values
	return r
}

// Multipart sets a multipart/form-data body. Dispatching with an empty
// form fails with a ValidationError.
func (r *Request) Multipart(form *codec.MultipartForm) *Request {
	r.bodyKind = bodyMultipart
	r.multipart = form
	return r
}

// ExpectStatus makes Do fail with a StatusMismatchError when the response
// status differs from code.
func (r *Request) ExpectStatus(code int) *Request {
	r.expectedStatus = code
	return r
}

// ExpectSuccess makes Do fail unless the response status is 2xx.
func (r *Request) ExpectSuccess() *Request {
	yes := true
	r.expectSuccess = &yes
	return r
}

// ExpectFailure makes Do fail when the response status is 2xx. It also
// overrides Config.ExpectSuccessByDefault for this request.
func (r *Request) ExpectFailure() *Request {
	no := false
	r.expectSuccess = &no
	return r
}

// SaveCookies enables cookie jar participation for this request even when
// the server default is off.
func (r *Request) SaveCookies() *Request {
	yes := true
	r.saveCookies = &yes
	return r
}

// DoNotSaveCookies excludes this request from the cookie jar: no stored
// cookies are sent and no response cookies are saved.
func (r *Request) DoNotSaveCookies() *Request {
	no := false
	r.saveCookies = &no
	return r
}

// ClearCookies wipes the server's jar immediately before this request is
// dispatched.
func (r *Request) ClearCookies() *Request {
	r.clearJar = true
	return r
}

// Do dispatches the request through the server's transport and returns
// the wrapped response. This is the builder's single suspension point: a
// hung handler hangs the caller, by design.
func (r *Request) Do() (*Response, error) {
	r.mu.Lock()
	if r.dispatched {
		r.mu.Unlock()
		return nil, &ReuseError{Method: r.method, Path: r.path}
	}
	r.dispatched = true
	r.mu.Unlock()

	s := r.server
	if r.clearJar {
		s.jar.Clear()
	}

	target, err := r.buildURL()
	if err != nil {
		return nil, err
	}

	body, inferredType, err := r.encodeBody()
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(r.ctx, r.method, target.String(), reader)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	for name, value := range s.snapshotDefaultHeaders() {
		httpReq.Header.Set(name, value)
	}
	for name, values := range r.headers {
		httpReq.Header.Del(name)
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	r.applyContentType(httpReq, inferredType)

	participate := s.config.SaveCookies
	if r.saveCookies != nil {
		participate = *r.saveCookies
	}
	if participate {
		jarHeader := s.jar.HeaderForRequest(target.Hostname(), target.Path, target.Scheme == "https")
		if jarHeader != "" {
			if existing := httpReq.Header.Get("Cookie"); existing != "" {
				jarHeader = existing + "; " + jarHeader
			}
			httpReq.Header.Set("Cookie", jarHeader)
		}
	}
	for _, cookie := range r.cookies {
		httpReq.AddCookie(cookie)
	}

	start := time.Now()
	httpResp, err := s.transport.RoundTrip(httpReq)
	duration := time.Since(start)
	if err != nil {
		return nil, err
	}

	respBody, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if participate {
		s.jar.ApplyResponseHeaders(target.Hostname(), httpResp.Header)
	}

	s.logger.Debug("request dispatched",
		zap.String("method", r.method),
		zap.String("url", target.String()),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("duration", duration))

	if err := r.checkExpectation(httpResp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return &Response{
		statusCode: httpResp.StatusCode,
		status:     httpResp.Status,
		header:     httpResp.Header,
		body:       respBody,
		duration:   duration,
		requestURL: target,
	}, nil
}

func (r *Request) buildURL() (*url.URL, error) {
	pathURL, err := url.Parse(r.path)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("bad path %q: %v", r.path, err)}
	}

	target := *r.server.baseURL
	target.Path = pathURL.Path
	target.RawQuery = pathURL.RawQuery

	if len(r.query) > 0 {
		var encoded strings.Builder
		for i, param := range r.query {
			if i > 0 {
				encoded.WriteByte('&')
			}
			encoded.WriteString(url.QueryEscape(param.key))
			encoded.WriteByte('=')
			encoded.WriteString(url.QueryEscape(param.value))
		}
		if target.RawQuery != "" {
			target.RawQuery += "&" + encoded.String()
		} else {
			target.RawQuery = encoded.String()
		}
	}

	return &target, nil
}

// encodeBody serializes the tagged body variant and returns the content
// type the body itself implies, if any.
func (r *Request) encodeBody() ([]byte, string, error) {
	switch r.bodyKind {
	case bodyEmpty:
		return nil, "", nil
	case bodyRaw:
		return r.rawBody, r.rawContentType, nil
	case bodyJSON:
		data, err := codec.JSON.Marshal(r.bodyValue)
		if err != nil {
			return nil, "", &ValidationError{Reason: err.Error()}
		}
		return data, codec.JSON.ContentType(), nil
	case bodyYAML:
		data, err := codec.YAML.Marshal(r.bodyValue)
		if err != nil {
			return nil, "", &ValidationError{Reason: err.Error()}
		}
		return data, codec.YAML.ContentType(), nil
	case bodyForm:
		data, err := codec.Form.Marshal(r.formValues)
		if err != nil {
			return nil, "", &ValidationError{Reason: err.Error()}
		}
		return data, codec.Form.ContentType(), nil
	case bodyMultipart:
		if r.multipart == nil || r.multipart.Len() == 0 {
			return nil, "", &ValidationError{Reason: "multipart body has no parts"}
		}
		data, contentType, err := r.multipart.Encode()
		if err != nil {
			return nil, "", &ValidationError{Reason: err.Error()}
		}
		return data, contentType, nil
	default:
		return nil, "", &ValidationError{Reason: fmt.Sprintf("unknown body kind %d", r.bodyKind)}
	}
}

// applyContentType resolves the Content-Type precedence: an explicit
// per-request value wins, then an explicitly set header, then the
// multipart boundary type, then the server default, then the type the
// body setter inferred.
func (r *Request) applyContentType(req *http.Request, inferred string) {
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
		return
	}
	if r.headers.Get("Content-Type") != "" {
		return
	}
	if r.bodyKind == bodyMultipart {
		// The boundary parameter must match the encoded body.
		req.Header.Set("Content-Type", inferred)
		return
	}
	if r.server.config.DefaultContentType != "" {
		req.Header.Set("Content-Type", r.server.config.DefaultContentType)
		return
	}
	if inferred != "" {
		req.Header.Set("Content-Type", inferred)
	}
}

func (r *Request) checkExpectation(status int, body []byte) error {
	if r.expectedStatus != 0 {
		if status != r.expectedStatus {
			return &StatusMismatchError{Expected: r.expectedStatus, Actual: status, Body: body}
		}
		return nil
	}

	expectSuccess := r.expectSuccess
	if expectSuccess == nil && r.server.config.ExpectSuccessByDefault {
		yes := true
		expectSuccess = &yes
	}
	if expectSuccess == nil {
		return nil
	}

	success := status >= 200 && status < 300
	if *expectSuccess && !success {
		return &StatusMismatchError{Range: "2xx", Actual: status, Body: body}
	}
	if !*expectSuccess && success {
		return &StatusMismatchError{Range: "non-2xx", Actual: status, Body: body}
	}
	return nil
}
