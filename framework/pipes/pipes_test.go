package pipes_test

import (
	"context"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/http/validation"
	"github.com/km-arc/go-nest/framework/pipes"
)

var idParam = gohttp.ArgumentMetadata{Type: gohttp.ParamPath, Data: "id"}

func requireBadRequest(t *testing.T, err error) *gohttp.Exception {
	t.Helper()
	e, ok := gohttp.AsException(err)
	require.True(t, ok, "want *Exception, got %v", err)
	require.Equal(t, http.StatusBadRequest, e.Status)
	return e
}

func TestParseInt(t *testing.T) {
	ctx := context.Background()
	p := pipes.ParseInt()

	for _, in := range []any{"42", " 42 ", 42, int64(42), float64(42)} {
		v, err := p.Transform(ctx, in, idParam)
		require.NoError(t, err, "input %#v", in)
		assert.Equal(t, 42, v)
	}

	for _, in := range []any{"abc", "4.2", float64(4.2), 1e300, -1e300, math.Inf(1), math.NaN(), "99999999999999999999", nil, true} {
		_, err := p.Transform(ctx, in, idParam)
		e := requireBadRequest(t, err)
		assert.Equal(t, `Validation failed: param "id" must be an integer`, e.Message)
	}
}

func TestParseInt_Logs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := &pipes.ParseIntPipe{Logger: zap.New(core)}

	_, err := p.Transform(context.Background(), "7", idParam)
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("parsed int").Len())
}

func TestParseBool(t *testing.T) {
	ctx := context.Background()
	md := gohttp.ArgumentMetadata{Type: gohttp.ParamQuery, Data: "active"}

	v, err := pipes.ParseBool().Transform(ctx, "true", md)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = pipes.ParseBool().Transform(ctx, false, md)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = pipes.ParseBool().Transform(ctx, "maybe", md)
	e := requireBadRequest(t, err)
	assert.Contains(t, e.Message, `query "active"`)
}

func TestDefaultValue(t *testing.T) {
	ctx := context.Background()
	p := pipes.DefaultValue("1")

	for _, in := range []any{nil, ""} {
		v, err := p.Transform(ctx, in, gohttp.ArgumentMetadata{})
		require.NoError(t, err)
		assert.Equal(t, "1", v)
	}

	v, _ := p.Transform(ctx, "3", gohttp.ArgumentMetadata{})
	assert.Equal(t, "3", v)

	// chained with ParseInt the way a query parameter would be
	v, _ = p.Transform(ctx, nil, gohttp.ArgumentMetadata{})
	n, err := pipes.ParseInt().Transform(ctx, v, gohttp.ArgumentMetadata{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	body := gohttp.ArgumentMetadata{Type: gohttp.ParamBody}
	p := pipes.Validate(validation.Rules{
		"title": "required|max:200",
		"year":  "nullable|integer|gte:1000|lte:2100",
	})

	in := map[string]any{"title": "Dune", "year": float64(1965)}
	out, err := p.Transform(ctx, in, body)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = p.Transform(ctx, map[string]any{"year": float64(99)}, body)
	e := requireBadRequest(t, err)
	assert.Equal(t,
		"Validation failed: The title field is required.; The year must be greater than or equal to 1000.",
		e.Message)

	_, err = p.Transform(ctx, nil, body)
	requireBadRequest(t, err)

	_, err = p.Transform(ctx, []any{"not", "an", "object"}, body)
	e = requireBadRequest(t, err)
	assert.Equal(t, "Validation failed: body must be an object", e.Message)
}
