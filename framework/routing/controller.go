package routing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/decorators"
	"github.com/km-arc/go-nest/framework/pipeline"
)

// RegisterController resolves class, registering it as a bare class first
// if the container does not know it, and mounts each declared route on r
// through p. A route whose handler is missing or malformed is logged and
// skipped; resolution failures are returned.
func RegisterController(ctx context.Context, r *Router, p *pipeline.Pipeline, class *container.Class) error {
	c := p.Container()
	token := class.ProviderToken()
	if !c.HasProvider(token) {
		if err := c.Register(class); err != nil {
			return err
		}
	}
	instance, err := c.Resolve(ctx, token)
	if err != nil {
		return fmt.Errorf("routing: controller %s: %w", class.Name(), err)
	}

	reg := c.Registry()
	prefix := decorators.ControllerPath(reg, class)
	routes := decorators.Routes(reg, class)
	if len(routes) == 0 {
		r.logger.Warn("controller declares no routes", zap.String("controller", class.Name()))
	}

	for _, rt := range routes {
		name := class.Name() + "." + rt.Handler
		full := decorators.JoinPath(prefix, rt.Path)

		h, err := p.Handler(class, instance, rt.Handler)
		if err != nil {
			r.logger.Warn("route skipped", zap.String("route", rt.Method+" "+full), zap.Error(err))
			continue
		}
		r.handle(rt.Method, full, h, name)
		r.logger.Info(rt.Method+" "+full+" -> "+name,
			zap.String("method", rt.Method),
			zap.String("path", full),
			zap.String("handler", name),
		)
	}
	return nil
}
