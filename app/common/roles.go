package common

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/km-arc/go-nest/framework/config"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/meta"
)

// RolesKey is the custom metadata key read by RolesGuard.
const RolesKey = "roles"

// Roles attaches the roles allowed to reach a controller or handler.
//
//	common.Roles(c.Get("/:id", "FindOne"), "admin", "user")
func Roles[B interface{ SetMetadata(string, any) B }](b B, roles ...string) B {
	return b.SetMetadata(RolesKey, roles)
}

// RolesGuard admits a request when the caller holds one of the roles
// declared with Roles. Handler roles override controller roles; no roles
// means open access.
//
// Caller roles come from a bearer JWT when a secret is configured,
// otherwise from the comma-separated role header.
type RolesGuard struct {
	reflector *meta.Reflector
	tokens    *TokenService
	header    string
	logger    *zap.Logger
}

func NewRolesGuard(rf *meta.Reflector, tokens *TokenService, cfg *config.Config, logger *zap.Logger) *RolesGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolesGuard{reflector: rf, tokens: tokens, header: cfg.Auth.RoleHeader, logger: logger.Named("guard")}
}

func (g *RolesGuard) CanActivate(ctx gohttp.ExecutionContext) (bool, error) {
	required := meta.Strings(g.reflector.GetAllAndOverride(RolesKey, ctx.Handler(), ctx.Class()))
	if len(required) == 0 {
		g.logger.Debug("no roles required, access granted")
		return true, nil
	}

	held, err := g.callerRoles(ctx.SwitchToHTTP().Request())
	if err != nil {
		return false, err
	}

	ok := slices.ContainsFunc(held, func(r string) bool { return slices.Contains(required, r) })
	g.logger.Debug("roles checked",
		zap.Strings("required", required),
		zap.Strings("held", held),
		zap.Bool("granted", ok),
		zap.String("request_id", ctx.RequestID()),
	)
	return ok, nil
}

func (g *RolesGuard) callerRoles(req *gohttp.Request) ([]string, error) {
	if g.tokens != nil && g.tokens.Enabled() {
		raw := req.BearerToken()
		if raw == "" {
			return nil, gohttp.Unauthorized("Missing bearer token")
		}
		claims, err := g.tokens.Parse(raw)
		if err != nil {
			return nil, gohttp.Unauthorized("Invalid bearer token")
		}
		return claims.Roles, nil
	}

	var roles []string
	for _, r := range strings.Split(req.Header(g.header), ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles, nil
}
