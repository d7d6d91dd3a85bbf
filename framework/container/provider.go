package container

import "context"

// ── Provider descriptions ─────────────────────────────────────────────────────

// Provider is a recipe for the value bound to a token. The set of
// implementations is closed: *Class (bare class), ClassProvider,
// ValueProvider and FactoryProvider.
type Provider interface {
	ProviderToken() Token
	provider()
}

// ClassProvider binds Provide to an instance built from UseClass.
//
//	container.ClassProvider{Provide: "BOOKS_REPOSITORY", UseClass: MemoryRepositoryClass}
type ClassProvider struct {
	Provide  Token
	UseClass *Class
}

// ValueProvider binds Provide to a pre-built value.
//
//	container.ValueProvider{Provide: config.Token, UseValue: cfg}
type ValueProvider struct {
	Provide  Token
	UseValue any
}

// Factory builds a value from its resolved dependencies, in Inject order.
type Factory func(ctx context.Context, deps ...any) (any, error)

// FactoryProvider binds Provide to the result of UseFactory called with the
// tokens in Inject resolved left to right.
//
//	container.FactoryProvider{
//	    Provide:    "DB",
//	    Inject:     []container.Token{config.Token},
//	    UseFactory: func(ctx context.Context, deps ...any) (any, error) { ... },
//	}
type FactoryProvider struct {
	Provide    Token
	UseFactory Factory
	Inject     []Token
}

func (p ClassProvider) ProviderToken() Token   { return p.Provide }
func (p ValueProvider) ProviderToken() Token   { return p.Provide }
func (p FactoryProvider) ProviderToken() Token { return p.Provide }

func (ClassProvider) provider()   {}
func (ValueProvider) provider()   {}
func (FactoryProvider) provider() {}

// Kind names the provider shape for logs: "class", "value" or "factory".
func Kind(p Provider) string {
	switch p.(type) {
	case *Class, ClassProvider, *ClassProvider:
		return "class"
	case ValueProvider, *ValueProvider:
		return "value"
	case FactoryProvider, *FactoryProvider:
		return "factory"
	}
	return "unknown"
}
