package decorators

import (
	"reflect"

	"github.com/km-arc/go-nest/framework/container"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/meta"
)

// Route is one declared endpoint of a controller.
type Route struct {
	Method  string // upper-case HTTP method
	Path    string // normalized, relative to the controller path
	Handler string // method name on the controller
}

// ── Controller ───────────────────────────────────────────────────────────────

// ClassBuilder attaches class-level metadata to a controller.
type ClassBuilder struct {
	reg   *meta.Registry
	class *container.Class
}

// Controller marks class as a controller mounted at path.
//
//	var BooksControllerClass = container.Injectable(NewBooksController)
//
//	func init() {
//	    c := decorators.Controller(BooksControllerClass, "books").UseGuards(RolesGuardClass)
//	    c.Get(":id", "FindOne").Param(0, "id", pipes.ParseInt())
//	}
func Controller(class *container.Class, path string) *ClassBuilder {
	return ControllerIn(meta.Default(), class, path)
}

// ControllerIn is Controller against a specific registry.
func ControllerIn(reg *meta.Registry, class *container.Class, path string) *ClassBuilder {
	reg.Set(class, meta.KeyControllerPath, NormalizePath(path))
	return &ClassBuilder{reg: reg, class: class}
}

// Class returns the controller class.
func (b *ClassBuilder) Class() *container.Class { return b.class }

// UseGuards appends class-level guards: instances or *container.Class.
func (b *ClassBuilder) UseGuards(guards ...any) *ClassBuilder {
	meta.Append(b.reg, b.class, meta.KeyGuards, guards...)
	return b
}

// UsePipes appends class-level pipes.
func (b *ClassBuilder) UsePipes(pipes ...any) *ClassBuilder {
	meta.Append(b.reg, b.class, meta.KeyPipes, pipes...)
	return b
}

// UseInterceptors appends class-level interceptors.
func (b *ClassBuilder) UseInterceptors(interceptors ...any) *ClassBuilder {
	meta.Append(b.reg, b.class, meta.KeyInterceptors, interceptors...)
	return b
}

// UseFilters appends class-level exception filters.
func (b *ClassBuilder) UseFilters(filters ...any) *ClassBuilder {
	meta.Append(b.reg, b.class, meta.KeyFilters, filters...)
	return b
}

// SetMetadata attaches a custom value readable through meta.Reflector.
func (b *ClassBuilder) SetMetadata(key string, value any) *ClassBuilder {
	b.reg.Set(b.class, meta.Custom(key), value)
	return b
}

// ── Routes ───────────────────────────────────────────────────────────────────

func (b *ClassBuilder) Get(path, handler string) *MethodBuilder {
	return b.route("GET", path, handler)
}

func (b *ClassBuilder) Post(path, handler string) *MethodBuilder {
	return b.route("POST", path, handler)
}

func (b *ClassBuilder) Put(path, handler string) *MethodBuilder {
	return b.route("PUT", path, handler)
}

func (b *ClassBuilder) Patch(path, handler string) *MethodBuilder {
	return b.route("PATCH", path, handler)
}

func (b *ClassBuilder) Delete(path, handler string) *MethodBuilder {
	return b.route("DELETE", path, handler)
}

func (b *ClassBuilder) route(method, path, handler string) *MethodBuilder {
	meta.Append(b.reg, b.class, meta.KeyRoutes, Route{
		Method:  method,
		Path:    NormalizePath(path),
		Handler: handler,
	})
	return b.Method(handler)
}

// Method returns a builder for handler without declaring a route, for
// attaching metadata to a handler that is routed elsewhere.
func (b *ClassBuilder) Method(handler string) *MethodBuilder {
	return &MethodBuilder{reg: b.reg, class: b.class, target: HandlerOf(b.class, handler)}
}

// HandlerOf returns the metadata target for a controller method.
func HandlerOf(class *container.Class, name string) meta.Method {
	return meta.Method{Type: class.Type(), Name: name}
}

// ── Handler ──────────────────────────────────────────────────────────────────

// MethodBuilder attaches handler-level and parameter metadata.
type MethodBuilder struct {
	reg    *meta.Registry
	class  *container.Class
	target meta.Method
}

// Target is the handler's metadata target.
func (b *MethodBuilder) Target() meta.Method { return b.target }

// UseGuards appends handler-level guards.
func (b *MethodBuilder) UseGuards(guards ...any) *MethodBuilder {
	meta.Append(b.reg, b.target, meta.KeyGuards, guards...)
	return b
}

// UsePipes appends handler-level pipes, applied to every bound parameter.
func (b *MethodBuilder) UsePipes(pipes ...any) *MethodBuilder {
	meta.Append(b.reg, b.target, meta.KeyPipes, pipes...)
	return b
}

// UseInterceptors appends handler-level interceptors.
func (b *MethodBuilder) UseInterceptors(interceptors ...any) *MethodBuilder {
	meta.Append(b.reg, b.target, meta.KeyInterceptors, interceptors...)
	return b
}

// UseFilters appends handler-level exception filters.
func (b *MethodBuilder) UseFilters(filters ...any) *MethodBuilder {
	meta.Append(b.reg, b.target, meta.KeyFilters, filters...)
	return b
}

// SetMetadata attaches a custom value to the handler.
func (b *MethodBuilder) SetMetadata(key string, value any) *MethodBuilder {
	b.reg.Set(b.target, meta.Custom(key), value)
	return b
}

// ── Parameters ───────────────────────────────────────────────────────────────
//
// index is the handler parameter position, receiver excluded. key narrows the
// source to one field; "" binds the whole source.

// Param binds a path parameter.
func (b *MethodBuilder) Param(index int, key string, pipes ...any) *MethodBuilder {
	return b.bind(gohttp.ParamPath, index, key, pipes)
}

// Query binds a query-string value.
func (b *MethodBuilder) Query(index int, key string, pipes ...any) *MethodBuilder {
	return b.bind(gohttp.ParamQuery, index, key, pipes)
}

// Body binds the decoded body or one of its fields.
func (b *MethodBuilder) Body(index int, key string, pipes ...any) *MethodBuilder {
	return b.bind(gohttp.ParamBody, index, key, pipes)
}

// Headers binds request headers; keys are matched lower-cased.
func (b *MethodBuilder) Headers(index int, key string, pipes ...any) *MethodBuilder {
	return b.bind(gohttp.ParamHeaders, index, key, pipes)
}

// Cookies binds request cookies.
func (b *MethodBuilder) Cookies(index int, key string, pipes ...any) *MethodBuilder {
	return b.bind(gohttp.ParamCookies, index, key, pipes)
}

func (b *MethodBuilder) bind(typ gohttp.ParamType, index int, key string, pipes []any) *MethodBuilder {
	md := gohttp.ArgumentMetadata{
		Index:      index,
		Type:       typ,
		Metatype:   paramType(b.class.Type(), b.target.Name, index),
		Data:       key,
		MethodName: b.target.Name,
	}
	if len(pipes) > 0 {
		md.Pipes = append([]any(nil), pipes...)
	}
	meta.Append(b.reg, b.class, meta.KeyParams, md)
	return b
}

// paramType returns the declared type of a handler parameter, nil when the
// method or index does not exist.
func paramType(t reflect.Type, name string, index int) reflect.Type {
	m, ok := t.MethodByName(name)
	if !ok {
		return nil
	}
	// In(0) is the receiver
	if index < 0 || index+1 >= m.Type.NumIn() {
		return nil
	}
	return m.Type.In(index + 1)
}
