package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/meta"
	"github.com/km-arc/go-nest/framework/pipeline"
	"github.com/km-arc/go-nest/framework/routing"
)

// ErrNotInitialized is returned by accessors that need Init to have run.
var ErrNotInitialized = errors.New("app: application not initialized")

const shutdownTimeout = 10 * time.Second

// Application wires a root module into a running HTTP server: it walks the
// module graph, registers providers, mounts controllers and runs boot hooks.
type Application struct {
	root      *container.Module
	container *container.Container
	globals   *pipeline.Globals
	logger    *zap.Logger
	ownLogger bool

	mu          sync.Mutex
	initialized bool
	pipeline    *pipeline.Pipeline
	router      *routing.Router
	server      *http.Server
	closed      bool
}

// Option configures Create.
type Option func(*Application)

// WithContainer uses c instead of a fresh container.
func WithContainer(c *container.Container) Option {
	return func(a *Application) { a.container = c }
}

// WithLogger fixes the logger. Without it the application uses the
// *zap.Logger bound in the container, if any, once Init has registered
// providers.
func WithLogger(l *zap.Logger) Option {
	return func(a *Application) { a.logger, a.ownLogger = l, true }
}

// Create builds an application for root. Nothing is registered with the
// container beyond the framework's own values until Init.
//
//	application := app.Create(AppModule)
//	application.UseGlobalFilters(common.NewHTTPExceptionFilter())
//	err := application.Listen(ctx, ":3000")
func Create(root *container.Module, opts ...Option) *Application {
	a := &Application{
		root:    root,
		globals: pipeline.NewGlobals(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.container == nil {
		a.container = container.New()
	}

	for _, p := range []container.ValueProvider{
		{Provide: container.TypeOf[*container.Container](), UseValue: a.container},
		{Provide: container.TypeOf[*meta.Reflector](), UseValue: meta.NewReflectorFor(a.container.Registry())},
		{Provide: container.TypeOf[*pipeline.Globals](), UseValue: a.globals},
	} {
		if !a.container.HasProvider(p.Provide) {
			a.container.MustRegister(p)
		}
	}
	return a
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

// Init processes the module graph and mounts every controller. It runs once;
// later calls return nil.
func (a *Application) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		return nil
	}

	graph := container.Scan(a.root)

	var registered []container.Provider
	if err := graph.RegisterAll(a.container, func(p container.Provider) {
		registered = append(registered, p)
	}); err != nil {
		return err
	}

	if err := a.adoptLogger(ctx); err != nil {
		return err
	}
	a.logGraph(graph, registered)

	a.pipeline = pipeline.New(a.container, a.globals, a.logger)
	a.router = routing.New(routing.WithLogger(a.logger), routing.WithAccessLog())

	for _, class := range graph.Controllers {
		if err := routing.RegisterController(ctx, a.router, a.pipeline, class); err != nil {
			return err
		}
	}

	if err := graph.Boot(ctx, a.container); err != nil {
		return err
	}

	a.initialized = true
	return nil
}

func (a *Application) adoptLogger(ctx context.Context) error {
	token := container.TypeOf[*zap.Logger]()
	if a.ownLogger || !a.container.HasProvider(token) {
		return nil
	}
	l, err := container.Resolve[*zap.Logger](ctx, a.container, token)
	if err != nil {
		return err
	}
	if l != nil {
		a.logger = l
	}
	return nil
}

func (a *Application) logGraph(g *container.Graph, registered []container.Provider) {
	ml := a.logger.Named("module")
	for _, m := range g.Modules {
		ml.Info("Processing "+moduleName(m), zap.Int("imports", len(m.Imports)), zap.Bool("global", m.Global))
	}
	pl := a.logger.Named("provider")
	for _, p := range registered {
		pl.Info("Registered "+container.TokenName(p.ProviderToken()), zap.String("kind", container.Kind(p)))
	}
}

func moduleName(m *container.Module) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("module@%p", m)
}

// Listen initializes the application and serves HTTP on addr until ctx is
// cancelled, then shuts down gracefully.
func (a *Application) Listen(ctx context.Context, addr string) error {
	if err := a.Init(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Join(err, a.shutdown(ctx))
	}

	a.mu.Lock()
	a.server = &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	srv := a.server
	a.mu.Unlock()

	a.logger.Named("app").Info("Listening on http://"+ln.Addr().String(), zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return errors.Join(err, a.shutdown(ctx))
	case <-ctx.Done():
		return a.shutdown(ctx)
	}
}

func (a *Application) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return a.Close(ctx)
}

// Close stops the server if it is running and closes every resolved
// singleton that implements io.Closer. Singletons are closed once; later
// calls only stop a server. All errors are joined.
func (a *Application) Close(ctx context.Context) error {
	a.mu.Lock()
	srv := a.server
	a.server = nil
	closed := a.closed
	a.closed = true
	a.mu.Unlock()

	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if closed {
		return errors.Join(errs...)
	}

	for _, token := range a.container.Tokens() {
		if !a.container.Resolved(token) {
			continue
		}
		inst, err := a.container.Resolve(ctx, token)
		if err != nil {
			continue
		}
		closer, ok := inst.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", container.TokenName(token), err))
		}
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// ── Access ───────────────────────────────────────────────────────────────────

// Container returns the application container.
func (a *Application) Container() *container.Container { return a.container }

// Logger returns the logger in use.
func (a *Application) Logger() *zap.Logger {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logger
}

// Get resolves token from the application container.
func (a *Application) Get(ctx context.Context, token container.Token) (any, error) {
	return a.container.Resolve(ctx, token)
}

// Get is the typed form of Application.Get.
//
//	svc, err := app.Get[*books.Service](ctx, application, container.TypeOf[*books.Service]())
func Get[T any](ctx context.Context, a *Application, token container.Token) (T, error) {
	return container.Resolve[T](ctx, a.container, token)
}

// Handler returns the HTTP handler. Init must have succeeded.
func (a *Application) Handler() (http.Handler, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, ErrNotInitialized
	}
	return a.router, nil
}

// Routes returns the mounted route table.
func (a *Application) Routes() ([]routing.RouteInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, ErrNotInitialized
	}
	return a.router.Routes(), nil
}

// ── Global enhancers ─────────────────────────────────────────────────────────
//
// Items are instances or *container.Class values. They apply to every route
// ahead of controller and handler enhancers (filters: after them).

func (a *Application) UseGlobalPipes(pipes ...any) {
	a.globals.AddPipes(pipes...)
	a.logGlobal(len(pipes), "pipe")
}

func (a *Application) UseGlobalGuards(guards ...any) {
	a.globals.AddGuards(guards...)
	a.logGlobal(len(guards), "guard")
}

func (a *Application) UseGlobalInterceptors(interceptors ...any) {
	a.globals.AddInterceptors(interceptors...)
	a.logGlobal(len(interceptors), "interceptor")
}

func (a *Application) UseGlobalFilters(filters ...any) {
	a.globals.AddFilters(filters...)
	a.logGlobal(len(filters), "filter")
}

func (a *Application) logGlobal(n int, kind string) {
	a.Logger().Named("global").Info(fmt.Sprintf("Registered %d %s(s)", n, kind), zap.String("kind", kind), zap.Int("count", n))
}
