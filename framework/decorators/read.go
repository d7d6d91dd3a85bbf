package decorators

import (
	"sort"

	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/meta"
)

// IsController reports whether target was declared with Controller.
func IsController(reg *meta.Registry, target meta.Target) bool {
	return reg.Has(target, meta.KeyControllerPath)
}

// ControllerPath returns the normalized mount path, "" when undeclared.
func ControllerPath(reg *meta.Registry, target meta.Target) string {
	p, _ := meta.Lookup[string](reg, target, meta.KeyControllerPath)
	return p
}

// Routes returns the controller's routes in declaration order.
func Routes(reg *meta.Registry, target meta.Target) []Route {
	return meta.List[Route](reg, target, meta.KeyRoutes)
}

// MethodParams returns the bindings for one handler, sorted by index.
// Bindings may be declared in any order.
func MethodParams(reg *meta.Registry, target meta.Target, handler string) []gohttp.ArgumentMetadata {
	var out []gohttp.ArgumentMetadata
	for _, p := range meta.List[gohttp.ArgumentMetadata](reg, target, meta.KeyParams) {
		if p.MethodName == handler {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Guards returns the guards declared on a class or handler target.
func Guards(reg *meta.Registry, target meta.Target) []any {
	return meta.List[any](reg, target, meta.KeyGuards)
}

// Pipes returns the pipes declared on a class or handler target.
func Pipes(reg *meta.Registry, target meta.Target) []any {
	return meta.List[any](reg, target, meta.KeyPipes)
}

// Interceptors returns the interceptors declared on a class or handler target.
func Interceptors(reg *meta.Registry, target meta.Target) []any {
	return meta.List[any](reg, target, meta.KeyInterceptors)
}

// Filters returns the filters declared on a class or handler target.
func Filters(reg *meta.Registry, target meta.Target) []any {
	return meta.List[any](reg, target, meta.KeyFilters)
}

// GetCustomMetadata returns a value attached with SetMetadata, or nil.
func GetCustomMetadata(reg *meta.Registry, target meta.Target, key string) any {
	v, _ := reg.Get(target, meta.Custom(key))
	return v
}
