// Package config loads typed application configuration from .env files and
// the process environment.
//
// # Environment variables
//
//	APP_NAME, APP_ENV, APP_DEBUG, APP_URL, APP_PORT
//	AUTH_JWT_SECRET, AUTH_ROLE_HEADER
//	DB_DRIVER, DB_DSN
//	CACHE_DRIVER, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, CACHE_TTL
//	LOG_LEVEL
//
// Values set in the process environment take precedence over .env files.
package config
