// Package app assembles the demo application: configuration, logging, the
// shared enhancers, response caching and the books feature.
package app
