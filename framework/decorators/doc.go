// Package decorators declares controllers, routes, parameter bindings and
// enhancers by writing to the metadata registry. Declarations run once,
// usually from init, and the pipeline and router read them back through the
// getters in this package.
package decorators
