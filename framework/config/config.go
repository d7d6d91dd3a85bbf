package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/km-arc/go-nest/framework/container"
)

// Token is the container token bound to the loaded *Config.
var Token = container.NewSymbol("CONFIG")

// Config is the central typed configuration struct.
type Config struct {
	App   AppConfig
	Auth  AuthConfig
	DB    DBConfig
	Cache CacheConfig
	Log   LogConfig
}

type AppConfig struct {
	Name  string `env:"APP_NAME" envDefault:"GoNest"`
	Env   string `env:"APP_ENV" envDefault:"local"` // local | production | testing
	Debug bool   `env:"APP_DEBUG" envDefault:"true"`
	URL   string `env:"APP_URL" envDefault:"http://localhost"`
	Port  int    `env:"APP_PORT" envDefault:"3000"`
}

type AuthConfig struct {
	// JWTSecret enables bearer-token roles; empty falls back to RoleHeader.
	JWTSecret  string `env:"AUTH_JWT_SECRET"`
	RoleHeader string `env:"AUTH_ROLE_HEADER" envDefault:"x-role"`
}

type DBConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"memory"` // memory | sqlite | postgres
	DSN    string `env:"DB_DSN"`
}

type CacheConfig struct {
	Driver        string        `env:"CACHE_DRIVER" envDefault:"memory"` // none | memory | redis
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL           time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL"` // debug | info | warn | error; empty picks by APP_ENV
}

// Load reads the given .env files (default ".env"; missing files are
// skipped) and parses the environment into a Config. Variables already set
// in the process win over file values.
//
//	cfg, err := config.Load()
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return parse(env.Options{})
}

// FromMap parses vars instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load followed by Validate; it panics on either error.
func MustLoad(envFiles ...string) *Config {
	cfg, err := Load(envFiles...)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(field, value string, allowed ...string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s must be one of %v, got %q", field, allowed, value))
		}
	}

	check("APP_ENV", c.App.Env, "local", "production", "testing")
	check("DB_DRIVER", c.DB.Driver, "memory", "sqlite", "postgres")
	check("CACHE_DRIVER", c.Cache.Driver, "none", "memory", "redis")
	if c.Log.Level != "" {
		check("LOG_LEVEL", c.Log.Level, "debug", "info", "warn", "error")
	}
	if c.App.Port < 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT out of range: %d", c.App.Port))
	}
	if c.DB.Driver != "memory" && c.DB.DSN == "" {
		errs = append(errs, fmt.Errorf("DB_DSN is required for DB_DRIVER=%s", c.DB.Driver))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must not be negative"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
}

// Addr is the listen address for App.Port.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.App.Port) }

func (c *Config) IsProduction() bool { return c.App.Env == "production" }

func (c *Config) IsTesting() bool { return c.App.Env == "testing" }
