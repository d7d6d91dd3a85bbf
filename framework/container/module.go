package container

import "context"

// ── Module ────────────────────────────────────────────────────────────────────

// Module groups controllers and providers and imports other modules.
//
//	var BooksModule = &container.Module{
//	    Name:        "BooksModule",
//	    Controllers: []*container.Class{BooksControllerClass},
//	    Providers:   []container.Provider{BooksServiceClass},
//	    Exports:     []container.Token{container.TypeOf[*BooksService]()},
//	}
//
// A dynamic module is a function returning a fresh *Module. Modules are
// identified by Name when it is set, so calling the function twice still
// processes the module once.
type Module struct {
	Name        string
	Imports     []*Module
	Controllers []*Class
	Providers   []Provider

	// Exports and Global are recorded for introspection; every provider
	// lives in the single application container.
	Exports []Token
	Global  bool

	// Boot runs after every module is registered and controllers are wired.
	// Safe to resolve anything here.
	Boot func(ctx context.Context, c *Container) error
}

func (m *Module) key() any {
	if m.Name != "" {
		return m.Name
	}
	return m
}

// ── Graph ─────────────────────────────────────────────────────────────────────

// Graph is the flattened result of walking a module tree.
type Graph struct {
	// Modules in processing order: imports before importers.
	Modules     []*Module
	Controllers []*Class
	Providers   []Provider
}

// Scan walks root and its imports depth-first, visiting each module exactly
// once. Imports are processed before the importing module's own providers.
func Scan(root *Module) *Graph {
	g := &Graph{}
	seen := make(map[any]bool)
	g.walk(root, seen)
	return g
}

func (g *Graph) walk(m *Module, seen map[any]bool) {
	if m == nil || seen[m.key()] {
		return
	}
	seen[m.key()] = true

	for _, imp := range m.Imports {
		g.walk(imp, seen)
	}
	g.Modules = append(g.Modules, m)
	g.Providers = append(g.Providers, m.Providers...)
	g.Controllers = append(g.Controllers, m.Controllers...)
}

// Boot calls every module's Boot hook in processing order.
func (g *Graph) Boot(ctx context.Context, c *Container) error {
	for _, m := range g.Modules {
		if m.Boot == nil {
			continue
		}
		if err := m.Boot(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterAll registers the graph's providers. A bare class that is already
// known is skipped, since several modules may list the same class; explicit
// class, value and factory providers must be unique.
// onRegister, when non-nil, is called for every provider actually added.
func (g *Graph) RegisterAll(c *Container, onRegister func(Provider)) error {
	for _, p := range g.Providers {
		if class, ok := p.(*Class); ok && c.HasProvider(class.ProviderToken()) {
			continue
		}
		if err := c.Register(p); err != nil {
			return err
		}
		if onRegister != nil {
			onRegister(p)
		}
	}
	return nil
}
