// Package container is the dependency-injection container: a registry of
// provider descriptions keyed by token plus a singleton table.
//
// # Tokens
//
// A class token is the reflect.Type produced by a constructor. Strings and
// *Symbol values name configuration or opaque values.
//
//	var BooksServiceClass = container.Injectable(NewBooksService)  // token: *BooksService
//	var ConfigToken       = container.NewSymbol("CONFIG")
//
// # Providers
//
//	c.Register(BooksServiceClass)                                              // bare class
//	c.Register(container.ClassProvider{Provide: "REPO", UseClass: MemoryRepoClass})
//	c.Register(container.ValueProvider{Provide: ConfigToken, UseValue: cfg})
//	c.Register(container.FactoryProvider{Provide: "DB", Inject: []container.Token{ConfigToken}, UseFactory: openDB})
//
// Registering a token twice fails with ErrDuplicateProvider.
//
// # Resolution
//
// Resolve builds on first use and caches forever. Constructor parameters are
// resolved by their declared type unless Inject (or When/Needs/Give) names
// another token for that index:
//
//	container.Inject(BooksServiceClass, 0, "BOOKS_REPOSITORY")
//
// A token requested again on its own resolution path fails with
// ErrCircularDependency; the container stays usable afterwards.
//
// # Modules
//
// Modules bundle providers and controllers; Scan flattens an import tree,
// visiting each module once.
package container
