package container

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/km-arc/go-nest/framework/meta"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container maps tokens to provider descriptions and caches every resolved
// value as a singleton for its lifetime.
//
// Registration happens at startup; resolution may run from concurrent
// requests. Building a cold token happens under a container-wide build slot,
// so each singleton is constructed exactly once. The slot is re-entered by
// nested resolutions carrying the builder's context, and the path used for
// cycle detection belongs to a single Resolve call.
type Container struct {
	mu sync.RWMutex

	// build slot; holds one token while a cold singleton is being built
	build chan struct{}

	// token → provider description
	providers map[Token]Provider

	// token → resolved singleton instance
	instances map[Token]any

	// resolved callbacks: []func(token, instance)
	afterResolving []func(Token, any)

	registry *meta.Registry
}

// Option configures a Container.
type Option func(*Container)

// WithRegistry makes the container read constructor metadata from r instead
// of the default registry.
func WithRegistry(r *meta.Registry) Option {
	return func(c *Container) {
		if r != nil {
			c.registry = r
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		providers: make(map[Token]Provider),
		instances: make(map[Token]any),
		build:     make(chan struct{}, 1),
		registry:  meta.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register adds a provider description. The token is the provider's Provide
// field, or the class itself for a bare *Class. Registering a token twice is
// a configuration error whatever the provider kinds involved.
func (c *Container) Register(p Provider) error {
	p, err := normalize(p)
	if err != nil {
		return err
	}
	token := p.ProviderToken()
	if !isComparable(token) {
		return fmt.Errorf("%w: token %v cannot be used as a key", ErrInvalidProvider, token)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.providers[token]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, TokenName(token))
	}
	c.providers[token] = p
	return nil
}

// MustRegister is Register for bootstrap code; it panics on error.
func (c *Container) MustRegister(providers ...Provider) {
	for _, p := range providers {
		if err := c.Register(p); err != nil {
			panic(err)
		}
	}
}

// HasProvider reports whether token has a provider description.
func (c *Container) HasProvider(token Token) bool {
	if !isComparable(token) {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.providers[token]
	return ok
}

// normalize validates the provider shape and dereferences pointer forms.
func normalize(p Provider) (Provider, error) {
	switch v := p.(type) {
	case nil:
		return nil, fmt.Errorf("%w: provider is nil", ErrInvalidProvider)
	case *Class:
		if v == nil {
			return nil, fmt.Errorf("%w: class is nil", ErrInvalidProvider)
		}
		return v, nil
	case *ClassProvider:
		if v == nil {
			return nil, fmt.Errorf("%w: provider is nil", ErrInvalidProvider)
		}
		return normalize(*v)
	case *ValueProvider:
		if v == nil {
			return nil, fmt.Errorf("%w: provider is nil", ErrInvalidProvider)
		}
		return normalize(*v)
	case *FactoryProvider:
		if v == nil {
			return nil, fmt.Errorf("%w: provider is nil", ErrInvalidProvider)
		}
		return normalize(*v)
	case ClassProvider:
		if v.UseClass == nil {
			return nil, fmt.Errorf("%w: class provider %q has no UseClass", ErrInvalidProvider, TokenName(v.Provide))
		}
	case FactoryProvider:
		if v.UseFactory == nil {
			return nil, fmt.Errorf("%w: factory provider %q has no UseFactory", ErrInvalidProvider, TokenName(v.Provide))
		}
	case ValueProvider:
	default:
		return nil, fmt.Errorf("%w: unsupported provider %T", ErrInvalidProvider, p)
	}
	if p.ProviderToken() == nil {
		return nil, fmt.Errorf("%w: %s provider has no token", ErrInvalidProvider, Kind(p))
	}
	return p, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve returns the singleton bound to token, building it and its
// dependencies on first use.
//
//	svc, err := c.Resolve(ctx, container.TypeOf[*BooksService]())
func (c *Container) Resolve(ctx context.Context, token Token) (any, error) {
	return c.resolve(ctx, token, nil)
}

// resolve threads the in-progress path through the recursion. The path is
// copied on every push, so a failed branch leaves nothing behind.
func (c *Container) resolve(ctx context.Context, token Token, path []Token) (any, error) {
	if !isComparable(token) {
		return nil, fmt.Errorf("%w: %v", ErrProviderNotFound, token)
	}

	// Check singleton instance cache
	if inst, ok := c.cached(token); ok {
		return inst, nil
	}

	if ctx.Value(buildKey{}) != c {
		select {
		case c.build <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		defer func() { <-c.build }()
		ctx = context.WithValue(ctx, buildKey{}, c)

		// Another caller may have finished it while we waited.
		if inst, ok := c.cached(token); ok {
			return inst, nil
		}
	}

	for _, seen := range path {
		if seen == token {
			return nil, circularError(token, path)
		}
	}

	c.mu.RLock()
	p, ok := c.providers[token]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, TokenName(token))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path = append(path[:len(path):len(path)], token)

	var (
		instance any
		err      error
	)
	switch p := p.(type) {
	case *Class:
		instance, err = c.instantiate(ctx, p, path)
	case ClassProvider:
		instance, err = c.instantiate(ctx, p.UseClass, path)
	case ValueProvider:
		instance = p.UseValue
	case FactoryProvider:
		instance, err = c.runFactory(ctx, p, path)
	default:
		err = fmt.Errorf("%w: for token %s", ErrInvalidProvider, TokenName(token))
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.instances[token] = instance
	cbs := c.afterResolving
	c.mu.Unlock()

	for _, cb := range cbs {
		cb(token, instance)
	}
	return instance, nil
}

// buildKey marks a context whose resolution already holds the build slot.
type buildKey struct{}

func (c *Container) cached(token Token) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.instances[token]
	return inst, ok
}

// instantiate resolves constructor dependencies depth-first, left to right.
// Per-index inject tokens take precedence over the positional parameter type.
func (c *Container) instantiate(ctx context.Context, class *Class, path []Token) (any, error) {
	params := class.paramTypes(c.registry)
	overrides, _ := meta.Lookup[map[int]Token](c.registry, class.typ, meta.KeyInjectTokens)

	deps := make([]any, len(params))
	for i, paramType := range params {
		token := paramType
		if override, ok := overrides[i]; ok {
			token = override
		}
		dep, err := c.resolve(ctx, token, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", class.Name(), err)
		}
		deps[i] = dep
	}
	return class.construct(deps)
}

func (c *Container) runFactory(ctx context.Context, p FactoryProvider, path []Token) (instance any, err error) {
	deps := make([]any, len(p.Inject))
	for i, token := range p.Inject {
		dep, err := c.resolve(ctx, token, path)
		if err != nil {
			return nil, fmt.Errorf("factory %s: %w", TokenName(p.Provide), err)
		}
		deps[i] = dep
	}

	defer func() {
		if r := recover(); r != nil {
			instance, err = nil, fmt.Errorf("factory %s: panic: %v", TokenName(p.Provide), r)
		}
	}()

	instance, err = p.UseFactory(ctx, deps...)
	if err != nil {
		return nil, fmt.Errorf("factory %s: %w", TokenName(p.Provide), err)
	}
	return instance, nil
}

func circularError(token Token, path []Token) error {
	chain := make([]string, 0, len(path)+1)
	for _, t := range path {
		chain = append(chain, TokenName(t))
	}
	chain = append(chain, TokenName(token))
	return fmt.Errorf("%w for token %s: %s", ErrCircularDependency, TokenName(token), strings.Join(chain, " -> "))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Resolved reports whether token already has a cached singleton.
func (c *Container) Resolved(token Token) bool {
	if !isComparable(token) {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[token]
	return ok
}

// Tokens returns every registered token (for debugging).
func (c *Container) Tokens() []Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Token, 0, len(c.providers))
	for k := range c.providers {
		out = append(out, k)
	}
	return out
}

// Registry returns the metadata registry the container reads from.
func (c *Container) Registry() *meta.Registry { return c.registry }

// Clear drops every provider and singleton. Meant for test isolation,
// never mid-request.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers = make(map[Token]Provider)
	c.instances = make(map[Token]any)
}

// AfterResolving registers a callback fired once per token, when its
// singleton is first stored. Callbacks run inside the build slot and must
// not call Resolve.
func (c *Container) AfterResolving(cb func(token Token, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that resolves token and type-asserts the result.
//
//	svc, err := container.Resolve[*BooksService](ctx, c, container.TypeOf[*BooksService]())
func Resolve[T any](ctx context.Context, c *Container, token Token) (T, error) {
	var zero T
	instance, err := c.Resolve(ctx, token)
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%s]: %s resolved to %T", reflect.TypeFor[T](), TokenName(token), instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error, for bootstrap code.
func MustResolve[T any](ctx context.Context, c *Container, token Token) T {
	v, err := Resolve[T](ctx, c, token)
	if err != nil {
		panic(err)
	}
	return v
}
