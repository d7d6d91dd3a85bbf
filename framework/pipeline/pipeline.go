package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/decorators"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/meta"
)

var (
	// ErrInvalidHandler is returned by Handler when the controller has no
	// usable method of the given name.
	ErrInvalidHandler = errors.New("pipeline: invalid handler")

	// ErrInvalidEnhancer means a declared pipe, guard, interceptor or filter
	// does not implement the expected interface.
	ErrInvalidEnhancer = errors.New("pipeline: invalid enhancer")
)

// Pipeline runs the request chain for controller handlers: parameter pipes,
// guards, interceptors around the handler, result delivery, and exception
// filters with a built-in fallback.
type Pipeline struct {
	container *container.Container
	registry  *meta.Registry
	globals   *Globals
	logger    *zap.Logger
}

// New creates a pipeline over c. Metadata is read from c's registry.
func New(c *container.Container, globals *Globals, logger *zap.Logger) *Pipeline {
	if globals == nil {
		globals = NewGlobals()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		container: c,
		registry:  c.Registry(),
		globals:   globals,
		logger:    logger.Named("pipeline"),
	}
}

// Globals returns the global enhancer lists.
func (p *Pipeline) Globals() *Globals { return p.globals }

// Container returns the container enhancers and controllers resolve from.
func (p *Pipeline) Container() *container.Container { return p.container }

// route is a handler with its declared metadata read once up front.
type route struct {
	class   *container.Class
	target  meta.Method
	fn      reflect.Value
	params  []gohttp.ArgumentMetadata
	bound   map[int]gohttp.ArgumentMetadata
	argType []reflect.Type

	classPipes, handlerPipes               []any
	classGuards, handlerGuards             []any
	classInterceptors, handlerInterceptors []any
	classFilters, handlerFilters           []any
}

// Handler returns the HTTP entry point for one controller method.
// instance is the resolved controller.
func (p *Pipeline) Handler(class *container.Class, instance any, handler string) (http.Handler, error) {
	rt, err := p.compile(class, instance, handler)
	if err != nil {
		return nil, err
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.serve(w, r, rt)
	}), nil
}

func (p *Pipeline) compile(class *container.Class, instance any, handler string) (*route, error) {
	fn := reflect.ValueOf(instance).MethodByName(handler)
	if !fn.IsValid() {
		return nil, fmt.Errorf("%w: %s has no method %s", ErrInvalidHandler, class.Name(), handler)
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: %s.%s must not be variadic", ErrInvalidHandler, class.Name(), handler)
	}
	switch {
	case ft.NumOut() > 2,
		ft.NumOut() == 2 && ft.Out(1) != errorType:
		return nil, fmt.Errorf("%w: %s.%s must return (), (T), (error) or (T, error)", ErrInvalidHandler, class.Name(), handler)
	}

	rt := &route{
		class:  class,
		target: decorators.HandlerOf(class, handler),
		fn:     fn,
		params: decorators.MethodParams(p.registry, class, handler),
		bound:  make(map[int]gohttp.ArgumentMetadata),
	}
	for _, md := range rt.params {
		if md.Index < 0 || md.Index >= ft.NumIn() {
			return nil, fmt.Errorf("%w: %s.%s has no parameter %d", ErrInvalidHandler, class.Name(), handler, md.Index)
		}
		rt.bound[md.Index] = md
	}
	rt.argType = make([]reflect.Type, ft.NumIn())
	for i := range rt.argType {
		rt.argType[i] = ft.In(i)
	}

	rt.classPipes = decorators.Pipes(p.registry, class)
	rt.handlerPipes = decorators.Pipes(p.registry, rt.target)
	rt.classGuards = decorators.Guards(p.registry, class)
	rt.handlerGuards = decorators.Guards(p.registry, rt.target)
	rt.classInterceptors = decorators.Interceptors(p.registry, class)
	rt.handlerInterceptors = decorators.Interceptors(p.registry, rt.target)
	rt.classFilters = decorators.Filters(p.registry, class)
	rt.handlerFilters = decorators.Filters(p.registry, rt.target)
	return rt, nil
}

// ── Request flow ─────────────────────────────────────────────────────────────

func (p *Pipeline) serve(w http.ResponseWriter, r *http.Request, rt *route) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	ec := gohttp.NewExecutionContext(r.Context(), rt.class, rt.target, req, res, nil, requestID(r))

	result, err := p.run(ec, rt)
	if err != nil {
		p.handleError(ec, rt, err)
		return
	}
	if isNil(result) {
		return
	}
	if res.Written() {
		p.logger.Debug("result dropped, response already written",
			zap.String("handler", handlerName(rt)),
			zap.String("request_id", ec.RequestID()),
		)
		return
	}
	res.Send(result)
}

// isNil also catches typed nils such as (*Book)(nil) or a nil slice.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// run executes materialization, guards and the interceptor onion. A panic
// anywhere inside is returned as an error.
func (p *Pipeline) run(ec gohttp.ExecutionContext, rt *route) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result, err = nil, panicError(rec)
		}
	}()

	ctx := ec.Context()

	args, err := p.materialize(ctx, ec, rt)
	if err != nil {
		return nil, err
	}

	guards, err := p.guardChain(ctx, rt)
	if err != nil {
		return nil, err
	}
	for _, g := range guards {
		ok, err := g.CanActivate(ec)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, gohttp.Forbidden("Access denied by guard")
		}
	}

	interceptors, err := p.interceptorChain(ctx, rt)
	if err != nil {
		return nil, err
	}
	return compose(ec, interceptors, func() (any, error) {
		return invoke(rt.fn, args)
	}).Handle()
}

// compose folds interceptors from last to first around the handler call,
// so interceptors[0] is the outermost.
func compose(ec gohttp.ExecutionContext, interceptors []gohttp.Interceptor, call func() (any, error)) gohttp.CallHandler {
	next := gohttp.CallHandler(gohttp.CallHandlerFunc(call))
	for i := len(interceptors) - 1; i >= 0; i-- {
		ic, inner := interceptors[i], next
		next = gohttp.CallHandlerFunc(func() (any, error) {
			return ic.Intercept(ec, inner)
		})
	}
	return next
}

var errorType = reflect.TypeFor[error]()

func invoke(fn reflect.Value, args []reflect.Value) (any, error) {
	out := fn.Call(args)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if fn.Type().Out(0) == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	default:
		if err := asError(out[1]); err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", rec)
}

// requestID prefers the id set by chi's RequestID middleware, then the
// inbound header, then a fresh uuid.
func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(middleware.RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

func handlerName(rt *route) string {
	return rt.class.Name() + "." + rt.target.Name
}
