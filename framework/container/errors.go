package container

import "errors"

var (
	// ErrDuplicateProvider is returned when a token is registered twice.
	// Registration never overwrites.
	ErrDuplicateProvider = errors.New("token already registered")

	// ErrProviderNotFound is returned when resolving a token nobody registered.
	ErrProviderNotFound = errors.New("token not registered")

	// ErrCircularDependency is returned when a token is requested again while
	// it is still being built on the same resolution path.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrInvalidProvider is returned for malformed provider descriptions and
	// for constructor arguments that do not fit the declared parameter type.
	ErrInvalidProvider = errors.New("invalid provider configuration")
)
