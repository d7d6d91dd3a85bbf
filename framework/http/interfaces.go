package http

import (
	"context"
	"reflect"
)

// ── Parameters ───────────────────────────────────────────────────────────────

// ParamType is the request source a handler parameter is extracted from.
type ParamType string

const (
	ParamBody    ParamType = "body"
	ParamQuery   ParamType = "query"
	ParamPath    ParamType = "param"
	ParamHeaders ParamType = "headers"
	ParamCookies ParamType = "cookies"
)

// ArgumentMetadata describes one bound handler parameter. Pipes receive it
// alongside the value they transform.
type ArgumentMetadata struct {
	Index int
	Type  ParamType

	// Metatype is the declared Go type of the parameter, nil if unknown.
	Metatype reflect.Type

	// Data is the sub-field key, e.g. "id" for Param("id"). Empty means the
	// whole source.
	Data string

	MethodName string

	// Pipes declared on this parameter only, instances or *container.Class.
	Pipes []any
}

// ── Pipes ────────────────────────────────────────────────────────────────────

// PipeTransform transforms or validates one parameter value.
type PipeTransform interface {
	Transform(ctx context.Context, value any, md ArgumentMetadata) (any, error)
}

// PipeFunc adapts a function to PipeTransform.
type PipeFunc func(ctx context.Context, value any, md ArgumentMetadata) (any, error)

func (f PipeFunc) Transform(ctx context.Context, value any, md ArgumentMetadata) (any, error) {
	return f(ctx, value, md)
}

// ── Guards ───────────────────────────────────────────────────────────────────

// CanActivate decides whether the request may reach the handler.
type CanActivate interface {
	CanActivate(ctx ExecutionContext) (bool, error)
}

// GuardFunc adapts a function to CanActivate.
type GuardFunc func(ctx ExecutionContext) (bool, error)

func (f GuardFunc) CanActivate(ctx ExecutionContext) (bool, error) { return f(ctx) }

// ── Interceptors ─────────────────────────────────────────────────────────────

// CallHandler runs everything inward of an interceptor.
type CallHandler interface {
	Handle() (any, error)
}

// CallHandlerFunc adapts a function to CallHandler.
type CallHandlerFunc func() (any, error)

func (f CallHandlerFunc) Handle() (any, error) { return f() }

// Interceptor wraps handler invocation. It may act before and after calling
// next.Handle, replace the result, or skip next entirely.
type Interceptor interface {
	Intercept(ctx ExecutionContext, next CallHandler) (any, error)
}

// InterceptorFunc adapts a function to Interceptor.
type InterceptorFunc func(ctx ExecutionContext, next CallHandler) (any, error)

func (f InterceptorFunc) Intercept(ctx ExecutionContext, next CallHandler) (any, error) {
	return f(ctx, next)
}

// ── Filters ──────────────────────────────────────────────────────────────────

// ExceptionFilter renders a failure. Returning an error (or panicking) means
// the filter did not handle it and the next filter is tried.
type ExceptionFilter interface {
	Catch(err error, host ArgumentsHost) error
}

// FilterFunc adapts a function to ExceptionFilter.
type FilterFunc func(err error, host ArgumentsHost) error

func (f FilterFunc) Catch(err error, host ArgumentsHost) error { return f(err, host) }
