package meta

// Reflector reads custom metadata attached with SetMetadata.
// Guards and interceptors take it as a constructor dependency.
type Reflector struct {
	registry *Registry
}

// NewReflector returns a Reflector over the default registry.
func NewReflector() *Reflector {
	return &Reflector{registry: std}
}

// NewReflectorFor returns a Reflector over r.
func NewReflectorFor(r *Registry) *Reflector {
	return &Reflector{registry: r}
}

// Get returns the custom value stored under key on target, or nil.
// Framework keys are read as-is; anything else is treated as a custom name.
func (rf *Reflector) Get(key Key, target Target) any {
	v, _ := rf.registry.Get(target, rf.resolve(key))
	return v
}

// GetAllAndOverride returns the first value found walking targets in order.
//
//	roles := reflector.GetAllAndOverride("roles", ctx.Handler(), ctx.Class())
func (rf *Reflector) GetAllAndOverride(key Key, targets ...Target) any {
	for _, t := range targets {
		if v, ok := rf.registry.Get(t, rf.resolve(key)); ok && v != nil {
			return v
		}
	}
	return nil
}

// GetAllAndMerge collects values from every target. Slices are flattened
// element by element; scalars are appended as single items.
func (rf *Reflector) GetAllAndMerge(key Key, targets ...Target) []any {
	var out []any
	for _, t := range targets {
		v, ok := rf.registry.Get(t, rf.resolve(key))
		if !ok || v == nil {
			continue
		}
		out = append(out, flatten(v)...)
	}
	return out
}

func (rf *Reflector) resolve(key Key) Key {
	if key.IsFramework() || len(key) >= len(customPrefix) && key[:len(customPrefix)] == customPrefix {
		return key
	}
	return Custom(string(key))
}

// Strings is a convenience for the common []string case.
func Strings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		return []string{s}
	}
	return nil
}

func flatten(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	case []int:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	}
	return []any{v}
}
