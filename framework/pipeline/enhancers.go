package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/km-arc/go-nest/framework/container"
	gohttp "github.com/km-arc/go-nest/framework/http"
)

// instance turns an enhancer entry into a usable value. A *container.Class
// is registered as a bare class on first sight and resolved as a singleton;
// anything else is used as-is.
func (p *Pipeline) instance(ctx context.Context, item any) (any, error) {
	class, ok := item.(*container.Class)
	if !ok {
		return item, nil
	}
	if !p.container.HasProvider(class.ProviderToken()) {
		// concurrent requests may race to register the same class
		if err := p.container.Register(class); err != nil && !errors.Is(err, container.ErrDuplicateProvider) {
			return nil, err
		}
	}
	return p.container.Resolve(ctx, class.ProviderToken())
}

func resolveAll[T any](ctx context.Context, p *Pipeline, kind string, items []any) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := p.instance(ctx, item)
		if err != nil {
			return nil, err
		}
		typed, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a %s", ErrInvalidEnhancer, v, kind)
		}
		out = append(out, typed)
	}
	return out, nil
}

func concat(lists ...[]any) []any {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]any, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// ── Chains ───────────────────────────────────────────────────────────────────
//
// Pipes, guards and interceptors run global → controller → handler.
// Filters run handler → controller → global.

func (p *Pipeline) pipeChain(ctx context.Context, rt *route, md gohttp.ArgumentMetadata) ([]gohttp.PipeTransform, error) {
	items := concat(p.globals.Pipes(), rt.classPipes, rt.handlerPipes, md.Pipes)
	return resolveAll[gohttp.PipeTransform](ctx, p, "pipe", items)
}

func (p *Pipeline) guardChain(ctx context.Context, rt *route) ([]gohttp.CanActivate, error) {
	items := concat(p.globals.Guards(), rt.classGuards, rt.handlerGuards)
	return resolveAll[gohttp.CanActivate](ctx, p, "guard", items)
}

func (p *Pipeline) interceptorChain(ctx context.Context, rt *route) ([]gohttp.Interceptor, error) {
	items := concat(p.globals.Interceptors(), rt.classInterceptors, rt.handlerInterceptors)
	return resolveAll[gohttp.Interceptor](ctx, p, "interceptor", items)
}

func (p *Pipeline) filterItems(rt *route) []any {
	return concat(rt.handlerFilters, rt.classFilters, p.globals.Filters())
}
