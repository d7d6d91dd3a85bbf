// Package providers contains the framework's dynamic modules: configuration
// and logging. Import them from the root module.
//
//	var AppModule = &container.Module{
//	    Name: "AppModule",
//	    Imports: []*container.Module{
//	        providers.ConfigModule(providers.ConfigOptions{}),
//	        providers.LoggerModule(nil),
//	        books.Module,
//	    },
//	}
package providers
