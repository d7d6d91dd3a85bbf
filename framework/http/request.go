package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

const maxMemory = 32 << 20 // 32 MB

// Request wraps *http.Request with the accessors the pipeline extracts
// parameters from: path params, query, headers, cookies and body.
type Request struct {
	raw *http.Request

	bodyOnce sync.Once
	body     any
	bodyErr  error
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// ── Sources ──────────────────────────────────────────────────────────────────

// Params returns the route parameters matched by the router.
func (req *Request) Params() map[string]any {
	out := make(map[string]any)
	rctx := chi.RouteContext(req.raw.Context())
	if rctx == nil {
		return out
	}
	for i, key := range rctx.URLParams.Keys {
		if key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		out[key] = rctx.URLParams.Values[i]
	}
	return out
}

// QueryParams returns the query string. Repeated keys become []string.
func (req *Request) QueryParams() map[string]any {
	return flatten(req.raw.URL.Query())
}

// Headers returns request headers keyed by lower-case name.
// Repeated headers are joined with ", ".
func (req *Request) Headers() map[string]any {
	out := make(map[string]any, len(req.raw.Header))
	for k, v := range req.raw.Header {
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	if req.raw.Host != "" {
		if _, ok := out["host"]; !ok {
			out["host"] = req.raw.Host
		}
	}
	return out
}

// Cookies returns request cookies by name.
func (req *Request) Cookies() map[string]any {
	out := make(map[string]any)
	for _, c := range req.raw.Cookies() {
		out[c.Name] = c.Value
	}
	return out
}

// Body returns the decoded body: JSON is decoded into map[string]any / []any,
// forms into map[string]any. An empty body yields nil. The body is read once
// and cached, so every parameter sees the same value.
func (req *Request) Body() (any, error) {
	req.bodyOnce.Do(req.readBody)
	return req.body, req.bodyErr
}

func (req *Request) readBody() {
	ct := req.ContentType()
	if req.raw.Body != nil {
		req.raw.Body = http.MaxBytesReader(nil, req.raw.Body, maxMemory)
	}

	switch {
	case strings.Contains(ct, "multipart/form-data"):
		if err := req.raw.ParseMultipartForm(maxMemory); err != nil {
			req.bodyErr = bodyError(err)
			return
		}
		req.body = flatten(req.raw.MultipartForm.Value)
		return
	case strings.Contains(ct, "application/x-www-form-urlencoded"):
		if err := req.raw.ParseForm(); err != nil {
			req.bodyErr = bodyError(err)
			return
		}
		req.body = flatten(req.raw.PostForm)
		return
	}

	if req.raw.Body == nil {
		return
	}
	defer req.raw.Body.Close()
	raw, err := io.ReadAll(req.raw.Body)
	if err != nil {
		req.bodyErr = bodyError(err)
		return
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		req.bodyErr = BadRequest("Invalid JSON body: " + err.Error())
		return
	}
	req.body = v
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return PayloadTooLarge(fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
	}
	return err
}

// ── Binding ──────────────────────────────────────────────────────────────────

func flatten(values map[string][]string) map[string]any {
	m := make(map[string]any, len(values))
	for k, vals := range values {
		if len(vals) == 1 {
			m[k] = vals[0]
		} else {
			m[k] = vals
		}
	}
	return m
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// BearerToken extracts the token from Authorization: Bearer <token>.
func (req *Request) BearerToken() string {
	auth := req.raw.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// IP returns the client IP (respects RealIP middleware).
func (req *Request) IP() string {
	return req.raw.RemoteAddr
}

// Method returns the HTTP method.
func (req *Request) Method() string { return req.raw.Method }

// Path returns the URL path.
func (req *Request) Path() string { return req.raw.URL.Path }

// URL returns the request URI as sent by the client.
func (req *Request) URL() *url.URL { return req.raw.URL }

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}
