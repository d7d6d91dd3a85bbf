package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-nest/framework/config"
	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/decorators"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/meta"
)

type shelf struct{}

func (*shelf) Open()   {}
func (*shelf) Admin()  {}
func (*shelf) Shared() {}

func testConfig(t *testing.T, vars map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.FromMap(vars)
	require.NoError(t, err)
	return cfg
}

type guardFixture struct {
	reg   *meta.Registry
	class *container.Class
}

func newGuardFixture() guardFixture {
	reg := meta.New()
	class := container.InjectableIn(reg, func() *shelf { return &shelf{} })
	c := Roles(decorators.ControllerIn(reg, class, "shelf"), "user")
	c.Get("open", "Open")
	Roles(c.Get("admin", "Admin"), "admin")
	c.Get("shared", "Shared")
	return guardFixture{reg: reg, class: class}
}

func (f guardFixture) ctx(handler string, r *http.Request) gohttp.ExecutionContext {
	return gohttp.NewExecutionContext(r.Context(), f.class, decorators.HandlerOf(f.class, handler),
		gohttp.NewRequest(r), gohttp.NewResponse(httptest.NewRecorder()), nil, "req-1")
}

// ── RolesGuard ───────────────────────────────────────────────────────────────

func TestRolesGuard_Header(t *testing.T) {
	f := newGuardFixture()
	cfg := testConfig(t, nil)
	guard := NewRolesGuard(meta.NewReflectorFor(f.reg), NewTokenService(cfg), cfg, nil)

	cases := []struct {
		name    string
		handler string
		role    string
		want    bool
	}{
		{"handler roles override class roles", "Admin", "user", false},
		{"handler role held", "Admin", "admin", true},
		{"class roles apply", "Shared", "user", true},
		{"class roles deny", "Shared", "guest", false},
		{"no role header", "Shared", "", false},
		{"comma separated", "Admin", "guest, admin", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.role != "" {
				r.Header.Set("x-role", tc.role)
			}
			ok, err := guard.CanActivate(f.ctx(tc.handler, r))
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestRolesGuard_NoRolesDeclared(t *testing.T) {
	reg := meta.New()
	class := container.InjectableIn(reg, func() *shelf { return &shelf{} })
	decorators.ControllerIn(reg, class, "").Get("", "Open")

	cfg := testConfig(t, nil)
	guard := NewRolesGuard(meta.NewReflectorFor(reg), NewTokenService(cfg), cfg, nil)
	f := guardFixture{reg: reg, class: class}

	ok, err := guard.CanActivate(f.ctx("Open", httptest.NewRequest(http.MethodGet, "/", nil)))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRolesGuard_Bearer(t *testing.T) {
	f := newGuardFixture()
	cfg := testConfig(t, map[string]string{"AUTH_JWT_SECRET": "s3cret"})
	tokens := NewTokenService(cfg)
	guard := NewRolesGuard(meta.NewReflectorFor(f.reg), tokens, cfg, nil)

	token, err := tokens.Issue("alice", []string{"admin"}, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set("x-role", "guest")
	ok, err := guard.CanActivate(f.ctx("Admin", r))
	require.NoError(t, err)
	assert.True(t, ok, "roles come from the token, not the header")

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("x-role", "admin")
	_, err = guard.CanActivate(f.ctx("Admin", r))
	e, ok := gohttp.AsException(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, e.Status)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")
	_, err = guard.CanActivate(f.ctx("Admin", r))
	e, ok = gohttp.AsException(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid bearer token", e.Message)
}

// ── TokenService ─────────────────────────────────────────────────────────────

func TestTokenService(t *testing.T) {
	cfg := testConfig(t, map[string]string{"AUTH_JWT_SECRET": "s3cret"})
	s := NewTokenService(cfg)

	token, err := s.Issue("bob", []string{"user"}, time.Minute)
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Subject)
	assert.Equal(t, []string{"user"}, claims.Roles)

	other := NewTokenService(testConfig(t, map[string]string{"AUTH_JWT_SECRET": "other"}))
	_, err = other.Parse(token)
	assert.Error(t, err, "signature check")

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = s.Parse(token)
	assert.Error(t, err, "expired")
}

func TestTokenService_Disabled(t *testing.T) {
	s := NewTokenService(testConfig(t, nil))
	assert.False(t, s.Enabled())
	_, err := s.Issue("x", nil, time.Minute)
	assert.ErrorIs(t, err, ErrTokensDisabled)
	_, err = s.Parse("x")
	assert.ErrorIs(t, err, ErrTokensDisabled)
}

// ── LoggingInterceptor ───────────────────────────────────────────────────────

func TestLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	i := NewLoggingInterceptor(zap.New(core))
	f := newGuardFixture()
	ec := f.ctx("Open", httptest.NewRequest(http.MethodGet, "/shelf/open", nil))

	got, err := i.Intercept(ec, gohttp.CallHandlerFunc(func() (any, error) { return "ok", nil }))
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	handled := logs.FilterMessage("handled").All()
	require.Len(t, handled, 1)
	fields := handled[0].ContextMap()
	assert.Equal(t, "shelf.Open", fields["handler"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "192.0.2.1:1234", fields["ip"])
	assert.Equal(t, 1, logs.FilterMessage("before").Len())

	boom := errors.New("boom")
	_, err = i.Intercept(ec, gohttp.CallHandlerFunc(func() (any, error) { return nil, boom }))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, logs.FilterMessage("failed").Len())
}

// ── HTTPExceptionFilter ──────────────────────────────────────────────────────

func TestHTTPExceptionFilter(t *testing.T) {
	f := NewHTTPExceptionFilter(nil)
	f.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	fx := newGuardFixture()
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/books/9?x=1", nil)
	ec := gohttp.NewExecutionContext(context.Background(), fx.class, decorators.HandlerOf(fx.class, "Open"),
		gohttp.NewRequest(r), gohttp.NewResponse(rr), nil, "req-9")

	require.NoError(t, f.Catch(gohttp.NotFound("Book with id 9 not found"), ec))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"statusCode": float64(404),
		"message":    "Book with id 9 not found",
		"error":      "NotFoundException",
		"timestamp":  "2026-01-02T03:04:05Z",
		"path":       "/books/9?x=1",
		"requestId":  "req-9",
	}, body)
}

func TestHTTPExceptionFilter_PlainErrorIs500(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	f := NewHTTPExceptionFilter(zap.New(core))
	f.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	fx := newGuardFixture()
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/books", nil)
	ec := gohttp.NewExecutionContext(r.Context(), fx.class, decorators.HandlerOf(fx.class, "Open"),
		gohttp.NewRequest(r), gohttp.NewResponse(rr), nil, "req-1")

	require.NoError(t, f.Catch(errors.New("disk on fire"), ec))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"statusCode": float64(500),
		"message":    "disk on fire",
		"error":      "Internal Server Error",
		"timestamp":  "2026-01-02T03:04:05Z",
		"path":       "/books",
		"requestId":  "req-1",
	}, body)
	assert.Equal(t, 1, logs.FilterMessage("unhandled error").Len())
}
