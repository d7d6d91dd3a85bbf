// Package meta is the process-wide metadata store that replaces language
// annotations.
//
// Declarations run once at init time and attach values to a target:
//
//	meta.Default().Set(reflect.TypeFor[*BooksController](), meta.KeyControllerPath, "/books")
//
// Targets are a class (reflect.Type), a handler (meta.Method) or a handler
// parameter (meta.Param). Set is last-write-wins; list-valued keys are grown
// by callers with Append, which copies before writing.
//
// Reflector exposes the custom keys written by decorators.SetMetadata:
//
//	roles := meta.Strings(reflector.GetAllAndOverride("roles", ctx.Handler(), ctx.Class()))
package meta
