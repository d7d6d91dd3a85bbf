package container

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-nest/framework/meta"
)

var errorType = reflect.TypeFor[error]()

// Class is a constructible type: a constructor func(deps...) T or
// func(deps...) (T, error) plus the metadata recorded when it was declared.
// Its token is T's reflect.Type, so a *Class doubles as a bare-class
// provider.
type Class struct {
	typ  reflect.Type
	ctor reflect.Value
}

// Injectable declares a class. It records the constructor's parameter types
// as the positional dependency tokens and marks the type injectable.
// Call it once per type, typically in a package-level var:
//
//	var BooksServiceClass = container.Injectable(NewBooksService)
//
// It panics when ctor does not have a supported shape; a bad declaration
// is a programming error caught at init.
func Injectable(ctor any) *Class {
	return InjectableIn(meta.Default(), ctor)
}

// InjectableIn is Injectable against a specific registry.
func InjectableIn(r *meta.Registry, ctor any) *Class {
	c, err := newClass(ctor)
	if err != nil {
		panic(err)
	}
	params := make([]Token, c.ctor.Type().NumIn())
	for i := range params {
		params[i] = c.ctor.Type().In(i)
	}
	r.Set(c.typ, meta.KeyInjectable, true)
	r.Set(c.typ, meta.KeyParamTypes, params)
	return c
}

func newClass(ctor any) (*Class, error) {
	if ctor == nil {
		return nil, fmt.Errorf("%w: constructor is nil", ErrInvalidProvider)
	}
	val := reflect.ValueOf(ctor)
	typ := val.Type()
	if typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: constructor must be a function, got %s", ErrInvalidProvider, typ)
	}
	if typ.IsVariadic() {
		return nil, fmt.Errorf("%w: constructor %s must not be variadic", ErrInvalidProvider, typ)
	}
	switch typ.NumOut() {
	case 1:
	case 2:
		if !typ.Out(1).Implements(errorType) {
			return nil, fmt.Errorf("%w: second return value of %s must be error", ErrInvalidProvider, typ)
		}
	default:
		return nil, fmt.Errorf("%w: constructor must return (T) or (T, error), got %s", ErrInvalidProvider, typ)
	}
	return &Class{typ: typ.Out(0), ctor: val}, nil
}

// IsInjectable reports whether target was declared with Injectable.
func IsInjectable(r *meta.Registry, target meta.Target) bool {
	v, _ := meta.Lookup[bool](r, target, meta.KeyInjectable)
	return v
}

// Inject overrides the dependency token for the constructor parameter at
// index. Overrides win over the positional parameter type, which is the only
// way to ask for string or symbol tokens.
//
//	container.Inject(BooksServiceClass, 0, "BOOKS_REPOSITORY")
func Inject(class *Class, index int, token Token) {
	InjectIn(meta.Default(), class, index, token)
}

// InjectIn is Inject against a specific registry.
func InjectIn(r *meta.Registry, class *Class, index int, token Token) {
	r.Update(class.typ, meta.KeyInjectTokens, func(current any, _ bool) any {
		prev, _ := current.(map[int]Token)
		next := make(map[int]Token, len(prev)+1)
		for k, v := range prev {
			next[k] = v
		}
		next[index] = token
		return next
	})
}

// Type is the constructed type, which is also the class token.
func (c *Class) Type() reflect.Type { return c.typ }

// Name is the bare type name, e.g. "BooksController".
func (c *Class) Name() string { return typeName(c.typ) }

// MetadataTarget lets a *Class be used wherever a metadata target is expected.
func (c *Class) MetadataTarget() meta.Target { return c.typ }

// ProviderToken implements Provider: a bare class is its own token.
func (c *Class) ProviderToken() Token { return c.typ }

func (*Class) provider() {}

func (c *Class) String() string { return c.Name() }

// paramTypes reads the positional dependency tokens, falling back to the
// constructor signature when the class was declared in another registry.
func (c *Class) paramTypes(r *meta.Registry) []Token {
	if params, ok := meta.Lookup[[]Token](r, c.typ, meta.KeyParamTypes); ok {
		return params
	}
	params := make([]Token, c.ctor.Type().NumIn())
	for i := range params {
		params[i] = c.ctor.Type().In(i)
	}
	return params
}

// construct calls the constructor with already-resolved dependencies.
func (c *Class) construct(deps []any) (instance any, err error) {
	fnType := c.ctor.Type()
	if len(deps) != fnType.NumIn() {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrInvalidProvider, c.Name(), fnType.NumIn(), len(deps))
	}
	args := make([]reflect.Value, len(deps))
	for i, dep := range deps {
		in := fnType.In(i)
		if dep == nil {
			args[i] = reflect.Zero(in)
			continue
		}
		v := reflect.ValueOf(dep)
		if !v.Type().AssignableTo(in) {
			return nil, fmt.Errorf("%w: cannot use %s as parameter %d (%s) of %s", ErrInvalidProvider, v.Type(), i, in, c.Name())
		}
		args[i] = v
	}

	defer func() {
		if r := recover(); r != nil {
			instance, err = nil, fmt.Errorf("constructing %s: panic: %v", c.Name(), r)
		}
	}()

	out := c.ctor.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fmt.Errorf("constructing %s: %w", c.Name(), out[1].Interface().(error))
	}
	return out[0].Interface(), nil
}
