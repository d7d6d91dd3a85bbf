// Package app is the application shell: it turns a root module into a
// configured container, a router with every controller mounted, and an
// HTTP server with graceful shutdown.
package app
