package pipeline

import "sync"

// Globals holds the application-wide enhancer lists. Entries are instances
// or *container.Class values resolved through the container per request.
type Globals struct {
	mu           sync.RWMutex
	pipes        []any
	guards       []any
	interceptors []any
	filters      []any
}

// NewGlobals returns empty global lists.
func NewGlobals() *Globals { return &Globals{} }

func (g *Globals) AddPipes(items ...any) {
	g.mu.Lock()
	g.pipes = append(g.pipes, items...)
	g.mu.Unlock()
}

func (g *Globals) AddGuards(items ...any) {
	g.mu.Lock()
	g.guards = append(g.guards, items...)
	g.mu.Unlock()
}

func (g *Globals) AddInterceptors(items ...any) {
	g.mu.Lock()
	g.interceptors = append(g.interceptors, items...)
	g.mu.Unlock()
}

func (g *Globals) AddFilters(items ...any) {
	g.mu.Lock()
	g.filters = append(g.filters, items...)
	g.mu.Unlock()
}

// Pipes returns a copy of the global pipes.
func (g *Globals) Pipes() []any { return g.snapshot(&g.pipes) }

// Guards returns a copy of the global guards.
func (g *Globals) Guards() []any { return g.snapshot(&g.guards) }

// Interceptors returns a copy of the global interceptors.
func (g *Globals) Interceptors() []any { return g.snapshot(&g.interceptors) }

// Filters returns a copy of the global filters.
func (g *Globals) Filters() []any { return g.snapshot(&g.filters) }

func (g *Globals) snapshot(list *[]any) []any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]any(nil), (*list)...)
}
