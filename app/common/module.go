package common

import (
	"github.com/km-arc/go-nest/framework/container"
)

var (
	TokenServiceClass        = container.Injectable(NewTokenService)
	RolesGuardClass          = container.Injectable(NewRolesGuard)
	LoggingInterceptorClass  = container.Injectable(NewLoggingInterceptor)
	HTTPExceptionFilterClass = container.Injectable(NewHTTPExceptionFilter)
)

// Module provides the shared auth, logging and error rendering enhancers.
func Module() *container.Module {
	return &container.Module{
		Name:   "CommonModule",
		Global: true,
		Providers: []container.Provider{
			TokenServiceClass,
			RolesGuardClass,
			LoggingInterceptorClass,
			HTTPExceptionFilterClass,
		},
		Exports: []container.Token{
			TokenServiceClass.ProviderToken(),
			RolesGuardClass.ProviderToken(),
			LoggingInterceptorClass.ProviderToken(),
			HTTPExceptionFilterClass.ProviderToken(),
		},
	}
}
