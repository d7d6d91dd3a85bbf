package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/km-arc/go-nest/framework/config"
	"github.com/km-arc/go-nest/framework/container"
)

// StoreToken is bound to the configured Store, or nil when caching is off.
const StoreToken = "CACHE_STORE"

var InterceptorClass = container.Injectable(NewInterceptor)

func init() {
	container.Inject(InterceptorClass, 0, StoreToken)
}

// NewStore picks the store for cfg.Cache.Driver.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Cache.Driver {
	case "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		s := NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}), cfg.App.Name+":")
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("cache: redis %s: %w", cfg.Cache.RedisAddr, err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("cache: unknown driver %q", cfg.Cache.Driver)
}

// Module binds StoreToken and the cache interceptor.
func Module() *container.Module {
	return &container.Module{
		Name:   "CacheModule",
		Global: true,
		Providers: []container.Provider{
			container.FactoryProvider{
				Provide: StoreToken,
				Inject:  []container.Token{config.Token},
				UseFactory: func(ctx context.Context, deps ...any) (any, error) {
					cfg, ok := deps[0].(*config.Config)
					if !ok {
						return nil, fmt.Errorf("cache: %v is not *config.Config", config.Token)
					}
					s, err := NewStore(ctx, cfg)
					if err != nil || s == nil {
						return nil, err
					}
					return s, nil
				},
			},
			InterceptorClass,
		},
		Exports: []container.Token{StoreToken, InterceptorClass.ProviderToken()},
	}
}
