package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-nest/app/common"
	nest "github.com/km-arc/go-nest/framework/app"
	"github.com/km-arc/go-nest/framework/config"
	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/providers"
)

func bootstrap(t *testing.T, vars map[string]string) (*nest.Application, http.Handler) {
	t.Helper()
	cfg, err := config.FromMap(vars)
	require.NoError(t, err)

	a := nest.Create(Module(Options{
		Config: providers.ConfigOptions{Config: cfg},
		Logger: zap.NewNop(),
	}))
	a.UseGlobalFilters(common.HTTPExceptionFilterClass)
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	h, err := a.Handler()
	require.NoError(t, err)
	return a, h
}

func send(t *testing.T, h http.Handler, method, target, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if role != "" {
		r.Header.Set("x-role", role)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), rr.Body.String())
	return m
}

// ── Routes ───────────────────────────────────────────────────────────────────

func TestRoutes(t *testing.T) {
	a, _ := bootstrap(t, nil)
	routes, err := a.Routes()
	require.NoError(t, err)

	got := make([]string, len(routes))
	for i, r := range routes {
		got[i] = r.Method + " " + r.Path + " " + r.Handler
	}
	assert.Equal(t, []string{
		"GET /books BooksController.FindAll",
		"GET /books/:id BooksController.FindOne",
		"POST /books BooksController.Create",
		"PUT /books/:id BooksController.Update",
		"DELETE /books/:id BooksController.Remove",
	}, got)
}

// ── Guards and filters ───────────────────────────────────────────────────────

func TestBooks_RoleRequired(t *testing.T) {
	_, h := bootstrap(t, nil)

	rr := send(t, h, http.MethodGet, "/books", "", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "Access denied by guard", body["message"])
	assert.Equal(t, "/books", body["path"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, body["requestId"])

	rr = send(t, h, http.MethodPost, "/books", "user", `{"title":"Nope"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code, "create needs admin")
}

func TestBooks_ReadAndCache(t *testing.T) {
	_, h := bootstrap(t, nil)

	rr := send(t, h, http.MethodGet, "/books", "user", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "The Great Gatsby", list[0]["title"])

	rr = send(t, h, http.MethodGet, "/books", "admin", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))

	rr = send(t, h, http.MethodGet, "/books/2", "user", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1984", decode(t, rr)["title"])
}

func TestBooks_ParamErrors(t *testing.T) {
	_, h := bootstrap(t, nil)

	rr := send(t, h, http.MethodGet, "/books/abc", "user", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `Validation failed: param "id" must be an integer`, decode(t, rr)["message"])

	rr = send(t, h, http.MethodGet, "/books/99", "user", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "Book with id 99 not found", body["message"])
	assert.Equal(t, "NotFoundException", body["error"])
}

// ── Writes ───────────────────────────────────────────────────────────────────

func TestBooks_CreateUpdateDelete(t *testing.T) {
	_, h := bootstrap(t, nil)

	// Warm the list cache so the create has something to evict.
	require.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/books", "admin", "").Code)

	rr := send(t, h, http.MethodPost, "/books", "admin", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode(t, rr)["message"], "The title field is required.")

	rr = send(t, h, http.MethodPost, "/books", "admin", `{"title":"New Book","author":"Author","year":2024}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode(t, rr)
	assert.Equal(t, float64(4), created["id"])
	assert.Equal(t, float64(2024), created["year"])

	rr = send(t, h, http.MethodGet, "/books", "admin", "")
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 4, "create evicted the cached list")

	rr = send(t, h, http.MethodPut, "/books/1", "admin", `{"year":"1926"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode(t, rr)
	assert.Equal(t, float64(1926), updated["year"])
	assert.Equal(t, "The Great Gatsby", updated["title"])

	rr = send(t, h, http.MethodPut, "/books/1", "admin", `{"year":99}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = send(t, h, http.MethodDelete, "/books/1", "admin", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted":true,"id":1}`, rr.Body.String())

	assert.Equal(t, http.StatusNotFound, send(t, h, http.MethodGet, "/books/1", "admin", "").Code)
	assert.Equal(t, http.StatusNotFound, send(t, h, http.MethodDelete, "/books/1", "admin", "").Code)
}

// ── Bearer tokens ────────────────────────────────────────────────────────────

func TestBooks_BearerToken(t *testing.T) {
	a, h := bootstrap(t, map[string]string{"AUTH_JWT_SECRET": "test-secret", "CACHE_DRIVER": "none"})

	tokens, err := nest.Get[*common.TokenService](context.Background(), a, common.TokenServiceClass.ProviderToken())
	require.NoError(t, err)
	token, err := tokens.Issue("alice", []string{"user"}, time.Minute)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/books/3", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("X-Cache"), "cache disabled")

	rr = send(t, h, http.MethodGet, "/books/3", "admin", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "role header ignored once tokens are on")
}

// ── Configuration ────────────────────────────────────────────────────────────

func TestInvalidConfigurationAbortsInit(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{"DB_DRIVER": "postgres"})
	require.NoError(t, err)

	a := nest.Create(Module(Options{Config: providers.ConfigOptions{Config: cfg}, Logger: zap.NewNop()}),
		nest.WithContainer(container.New()))
	err = a.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN is required")
}
