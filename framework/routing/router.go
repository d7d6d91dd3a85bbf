package routing

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-nest/framework/logging"
)

// RouteInfo describes one mounted route.
type RouteInfo struct {
	Method  string
	Path    string // as declared, e.g. /books/:id
	Pattern string // as mounted on chi, e.g. /books/{id}
	Handler string // Controller.Method, empty for plain handlers
}

// Router wraps chi.Router and records what is mounted on it.
type Router struct {
	mux    chi.Router
	logger *zap.Logger

	mu     sync.RWMutex
	routes []RouteInfo
}

// Option configures New.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	accessLog bool
}

// WithLogger sets the logger for route registration messages.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAccessLog mounts logging.Middleware using the router's logger.
func WithAccessLog() Option {
	return func(o *options) { o.accessLog = true }
}

// New creates a Router with RequestID, RealIP and Recoverer middleware.
func New(opts ...Option) *Router {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if o.accessLog {
		r.Use(logging.Middleware(o.logger))
	}
	r.Use(middleware.Recoverer)

	return &Router{mux: r, logger: o.logger.Named("router")}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.Method(http.MethodGet, pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.Method(http.MethodPost, pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.Method(http.MethodPut, pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.Method(http.MethodPatch, pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.Method(http.MethodDelete, pattern, h) }

// Method mounts h for one HTTP method. Express-style ":name" segments are
// accepted alongside chi's "{name}".
func (r *Router) Method(method, pattern string, h http.Handler) {
	r.handle(method, pattern, h, "")
}

func (r *Router) handle(method, pattern string, h http.Handler, name string) {
	method = strings.ToUpper(method)
	chiPattern := ChiPattern(pattern)
	r.mux.Method(method, chiPattern, h)

	r.mu.Lock()
	r.routes = append(r.routes, RouteInfo{
		Method:  method,
		Path:    pattern,
		Pattern: chiPattern,
		Handler: name,
	})
	r.mu.Unlock()
}

// ── Introspection ────────────────────────────────────────────────────────────

// Routes returns mounted routes in registration order.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RouteInfo(nil), r.routes...)
}

// ChiPattern rewrites ":name" segments to chi's "{name}".
//
//	ChiPattern("/books/:id") == "/books/{id}"
func ChiPattern(pattern string) string {
	if !strings.Contains(pattern, ":") {
		return pattern
	}
	segs := strings.Split(pattern, "/")
	for i, s := range segs {
		if len(s) > 1 && s[0] == ':' {
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}

// Param extracts a URL param from a chi-routed request.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.Server.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}
