package cache

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-nest/framework/config"
	gohttp "github.com/km-arc/go-nest/framework/http"
)

// Interceptor caches GET responses by URL. A successful write to a path
// evicts that path and its parent collection.
type Interceptor struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewInterceptor builds the interceptor. A nil store disables caching.
func NewInterceptor(store Store, cfg *config.Config, logger *zap.Logger) *Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interceptor{store: store, ttl: cfg.Cache.TTL, logger: logger.Named("cache")}
}

func (i *Interceptor) Intercept(ctx gohttp.ExecutionContext, next gohttp.CallHandler) (any, error) {
	if i.store == nil {
		return next.Handle()
	}
	req := ctx.SwitchToHTTP().Request()
	if req.Method() != http.MethodGet {
		return i.evictAfter(ctx, next)
	}

	key := requestKey(req)
	res := ctx.SwitchToHTTP().Response()

	if body, ok, err := i.store.Get(ctx.Context(), key); err != nil {
		i.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		w := res.Raw()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(res.StatusCode())
		_, _ = w.Write(body)
		return nil, nil
	}

	result, err := next.Handle()
	if err != nil || result == nil || res.Written() {
		return result, err
	}

	body, merr := json.Marshal(result)
	if merr != nil {
		return result, nil
	}
	if err := i.store.Set(ctx.Context(), key, body, i.ttl); err != nil {
		i.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	res.Raw().Header().Set("X-Cache", "MISS")
	return result, nil
}

func (i *Interceptor) evictAfter(ctx gohttp.ExecutionContext, next gohttp.CallHandler) (any, error) {
	result, err := next.Handle()
	if err != nil {
		return nil, err
	}
	p := cleanPath(ctx.SwitchToHTTP().Request().Path())
	keys := []string{p}
	if parent := path.Dir(p); parent != p {
		keys = append(keys, parent)
	}
	if err := i.store.Delete(ctx.Context(), keys...); err != nil {
		i.logger.Warn("cache eviction failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return result, nil
}

func requestKey(req *gohttp.Request) string {
	key := cleanPath(req.Path())
	if q := req.URL().RawQuery; q != "" {
		key += "?" + q
	}
	return key
}

func cleanPath(p string) string {
	p = path.Clean("/" + p)
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
