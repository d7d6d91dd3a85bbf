// Package logging builds the zap logger from configuration and provides the
// HTTP access-log middleware.
package logging
