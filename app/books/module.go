package books

import (
	"context"
	"fmt"

	"github.com/km-arc/go-nest/app/common"
	"github.com/km-arc/go-nest/app/common/cache"
	"github.com/km-arc/go-nest/framework/config"
	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/decorators"
	"github.com/km-arc/go-nest/framework/http/validation"
	"github.com/km-arc/go-nest/framework/pipes"
)

var (
	ServiceClass    = container.Injectable(NewBooksService)
	ControllerClass = container.Injectable(NewBooksController)
)

var (
	createRules = validation.Rules{
		"title":  "required|string|min:1|max:200",
		"author": "nullable|string|min:1",
		"year":   "nullable|integer|gte:1000|lte:2100",
	}
	updateRules = validation.Rules{
		"title":  "sometimes|string|min:1|max:200",
		"author": "nullable|string|min:1",
		"year":   "nullable|integer|gte:1000|lte:2100",
	}
)

func init() {
	container.When(ServiceClass).Needs(0).Give(RepositoryToken)

	c := decorators.Controller(ControllerClass, "/books").
		UseGuards(common.RolesGuardClass).
		UseInterceptors(common.LoggingInterceptorClass, cache.InterceptorClass)

	common.Roles(c.Get("/", "FindAll"), "admin", "user")
	common.Roles(c.Get("/:id", "FindOne"), "admin", "user").
		Param(1, "id", pipes.ParseInt())
	common.Roles(c.Post("/", "Create"), "admin").
		Body(2, "", pipes.Validate(createRules))
	common.Roles(c.Put("/:id", "Update"), "admin").
		Param(1, "id", pipes.ParseInt()).
		Body(2, "", pipes.Validate(updateRules))
	common.Roles(c.Delete("/:id", "Remove"), "admin").
		Param(1, "id", pipes.ParseInt())
}

// NewRepository picks the repository for cfg.DB.Driver. SQL repositories
// are opened here and migrated when the module boots.
func NewRepository(ctx context.Context, cfg *config.Config) (Repository, error) {
	if cfg.DB.Driver == "memory" {
		return NewMemoryRepository(Classics()...), nil
	}
	d, err := DialectFor(cfg.DB.Driver)
	if err != nil {
		return nil, err
	}
	return OpenSQL(ctx, d, cfg.DB.DSN)
}

// Module wires the books feature. Importers must also provide config.Token,
// *zap.Logger and the common and cache enhancers.
func Module() *container.Module {
	return &container.Module{
		Name:        "BooksModule",
		Controllers: []*container.Class{ControllerClass},
		Providers: []container.Provider{
			container.FactoryProvider{
				Provide: RepositoryToken,
				Inject:  []container.Token{config.Token},
				UseFactory: func(ctx context.Context, deps ...any) (any, error) {
					cfg, ok := deps[0].(*config.Config)
					if !ok {
						return nil, fmt.Errorf("books: %v is not *config.Config", config.Token)
					}
					return NewRepository(ctx, cfg)
				},
			},
			ServiceClass,
		},
		Exports: []container.Token{ServiceClass.ProviderToken()},
		Boot: func(ctx context.Context, c *container.Container) error {
			repo, err := container.Resolve[Repository](ctx, c, RepositoryToken)
			if err != nil {
				return err
			}
			if m, ok := repo.(interface{ Migrate(context.Context) error }); ok {
				return m.Migrate(ctx)
			}
			return nil
		},
	}
}
