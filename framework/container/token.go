package container

import (
	"fmt"
	"reflect"
)

// Token identifies a provider. Class tokens are the reflect.Type a
// constructor returns; string and *Symbol tokens name configuration and
// opaque values. Tokens are compared with ==.
type Token = any

// Symbol is a unique opaque token. Two symbols with the same name are
// still different tokens.
type Symbol struct {
	name string
}

// NewSymbol creates a fresh symbol.
//
//	var ConfigToken = container.NewSymbol("CONFIG")
func NewSymbol(name string) *Symbol {
	return &Symbol{name: name}
}

func (s *Symbol) String() string { return "Symbol(" + s.name + ")" }

// TypeOf returns the class token for T.
//
//	c.Resolve(ctx, container.TypeOf[*BooksService]())
func TypeOf[T any]() Token {
	return reflect.TypeFor[T]()
}

// TokenName renders a token for error and log messages.
func TokenName(token Token) string {
	switch t := token.(type) {
	case nil:
		return "<nil>"
	case *Class:
		return t.Name()
	case reflect.Type:
		return typeName(t)
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprintf("%v", token)
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func isComparable(token Token) bool {
	if token == nil {
		return false
	}
	return reflect.TypeOf(token).Comparable()
}
