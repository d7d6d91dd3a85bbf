// Package common holds the enhancers shared by the demo features:
// RolesGuard with the Roles helper, LoggingInterceptor, HTTPExceptionFilter
// and the JWT TokenService the guard reads roles from.
package common
