// Package cache provides response caching for GET handlers, backed by an
// in-process map or redis.
package cache
