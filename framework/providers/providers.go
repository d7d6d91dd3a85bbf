package providers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-nest/framework/config"
	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/logging"
)

// ── ConfigModule ──────────────────────────────────────────────────────────────

// ConfigOptions controls ConfigModule.
type ConfigOptions struct {
	// EnvFiles are passed to config.Load. Ignored when Config is set.
	EnvFiles []string

	// Config is used as-is instead of loading, typically in tests.
	Config *config.Config
}

// ConfigModule binds the application configuration.
//
// Bound tokens:
//   - config.Token                 → *config.Config
//   - container.TypeOf[*config.Config]() → the same value, for constructor injection
//
// The configuration is loaded and validated during boot, so a bad
// environment aborts startup with every problem listed.
func ConfigModule(opts ConfigOptions) *container.Module {
	return &container.Module{
		Name:   "ConfigModule",
		Global: true,
		Providers: []container.Provider{
			container.FactoryProvider{
				Provide: config.Token,
				UseFactory: func(context.Context, ...any) (any, error) {
					cfg := opts.Config
					if cfg == nil {
						var err error
						if cfg, err = config.Load(opts.EnvFiles...); err != nil {
							return nil, err
						}
					}
					if err := cfg.Validate(); err != nil {
						return nil, err
					}
					return cfg, nil
				},
			},
			alias(container.TypeOf[*config.Config](), config.Token),
		},
		Exports: []container.Token{config.Token, container.TypeOf[*config.Config]()},
		Boot: func(ctx context.Context, c *container.Container) error {
			_, err := c.Resolve(ctx, config.Token)
			return err
		},
	}
}

// ── LoggerModule ──────────────────────────────────────────────────────────────

// LoggerModule binds *zap.Logger. A nil logger is built from the
// configuration with logging.New, so ConfigModule must be imported too.
func LoggerModule(logger *zap.Logger) *container.Module {
	token := container.TypeOf[*zap.Logger]()

	var p container.Provider
	if logger != nil {
		p = container.ValueProvider{Provide: token, UseValue: logger}
	} else {
		p = container.FactoryProvider{
			Provide: token,
			Inject:  []container.Token{config.Token},
			UseFactory: func(_ context.Context, deps ...any) (any, error) {
				cfg, ok := deps[0].(*config.Config)
				if !ok {
					return nil, fmt.Errorf("providers: %v is not *config.Config", config.Token)
				}
				return logging.New(cfg)
			},
		}
	}

	return &container.Module{
		Name:      "LoggerModule",
		Global:    true,
		Providers: []container.Provider{p},
		Exports:   []container.Token{token},
	}
}

// alias binds token to whatever target resolves to.
func alias(token, target container.Token) container.FactoryProvider {
	return container.FactoryProvider{
		Provide: token,
		Inject:  []container.Token{target},
		UseFactory: func(_ context.Context, deps ...any) (any, error) {
			return deps[0], nil
		},
	}
}
