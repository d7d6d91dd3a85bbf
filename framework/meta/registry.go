package meta

import (
	"reflect"
	"sync"
)

// ── Targets ───────────────────────────────────────────────────────────────────

// Target identifies what a metadata entry is attached to: a class
// (reflect.Type), a handler (Method) or a handler parameter (Param).
// Any comparable value works; these are the ones the framework uses.
type Target any

// Method targets a named method of a class.
type Method struct {
	Type reflect.Type
	Name string
}

// Param targets the parameter at Index of a method.
type Param struct {
	Method Method
	Index  int
}

// Targeter is implemented by values that stand in for a metadata target,
// e.g. *container.Class resolves to its reflect.Type.
type Targeter interface {
	MetadataTarget() Target
}

// TargetOf normalizes t to the value used as a map key.
func TargetOf(t Target) Target {
	if tt, ok := t.(Targeter); ok {
		return tt.MetadataTarget()
	}
	return t
}

// ── Registry ──────────────────────────────────────────────────────────────────

// Registry is a (target, key) → value store. Set overwrites; the registry
// never merges. List-valued keys are built by callers with read-append-write.
type Registry struct {
	mu      sync.RWMutex
	entries map[Target]map[Key]any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[Target]map[Key]any)}
}

var std = New()

// Default returns the process-wide registry populated by init-time
// declarations.
func Default() *Registry { return std }

// Set attaches value to (target, key), replacing any previous value.
func (r *Registry) Set(target Target, key Key, value any) {
	target = TargetOf(target)
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.entries[target]
	if !ok {
		m = make(map[Key]any)
		r.entries[target] = m
	}
	m[key] = value
}

// Get returns the value for (target, key) and whether it was present.
func (r *Registry) Get(target Target, key Key) (any, bool) {
	target = TargetOf(target)
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[target][key]
	return v, ok
}

// Has reports whether (target, key) has a value.
func (r *Registry) Has(target Target, key Key) bool {
	_, ok := r.Get(target, key)
	return ok
}

// Update runs fn on the current value under the write lock and stores the
// result. It is the read-append-write primitive for list-valued keys.
func (r *Registry) Update(target Target, key Key, fn func(current any, ok bool) any) {
	target = TargetOf(target)
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.entries[target]
	if !ok {
		m = make(map[Key]any)
		r.entries[target] = m
	}
	cur, found := m[key]
	m[key] = fn(cur, found)
}

// ── Typed helpers ─────────────────────────────────────────────────────────────

// Lookup returns the value for (target, key) asserted to T.
// A missing entry or a value of another type yields (zero, false).
func Lookup[T any](r *Registry, target Target, key Key) (T, bool) {
	v, ok := r.Get(target, key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Append adds items to the slice stored under (target, key). The stored
// slice is copied, never mutated in place, so earlier readers keep a stable view.
func Append[T any](r *Registry, target Target, key Key, items ...T) {
	r.Update(target, key, func(current any, _ bool) any {
		prev, _ := current.([]T)
		next := make([]T, 0, len(prev)+len(items))
		next = append(next, prev...)
		return append(next, items...)
	})
}

// List returns the slice stored under (target, key), or nil.
func List[T any](r *Registry, target Target, key Key) []T {
	v, _ := Lookup[[]T](r, target, key)
	return v
}
