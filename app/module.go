package app

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-nest/app/books"
	"github.com/km-arc/go-nest/app/common"
	"github.com/km-arc/go-nest/app/common/cache"
	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/providers"
)

// Options configures the root module.
type Options struct {
	Config providers.ConfigOptions

	// Logger overrides the logger built from configuration.
	Logger *zap.Logger
}

// Module returns the root module of the demo application.
func Module(opts Options) *container.Module {
	return &container.Module{
		Name: "AppModule",
		Imports: []*container.Module{
			providers.ConfigModule(opts.Config),
			providers.LoggerModule(opts.Logger),
			common.Module(),
			cache.Module(),
			books.Module(),
		},
	}
}
