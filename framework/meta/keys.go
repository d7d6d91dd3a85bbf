package meta

// Key names a metadata entry.
type Key string

// Framework keys.
const (
	KeyControllerPath Key = "nest:controller:path"
	KeyRoutes         Key = "nest:routes"
	KeyParams         Key = "nest:params"
	KeyInjectable     Key = "nest:injectable"
	KeyInjectTokens   Key = "nest:inject:tokens"
	KeyParamTypes     Key = "nest:paramtypes"
	KeyGuards         Key = "nest:guards"
	KeyPipes          Key = "nest:pipes"
	KeyInterceptors   Key = "nest:interceptors"
	KeyFilters        Key = "nest:filters"

	customPrefix = "custom:"
)

// Custom returns the namespaced key for user metadata set via SetMetadata.
func Custom(name string) Key {
	return Key(customPrefix + name)
}

// IsFramework reports whether k is one of the framework's own keys.
func (k Key) IsFramework() bool {
	return len(k) >= 5 && k[:5] == "nest:"
}
