package pipes

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/http/validation"
)

func where(md gohttp.ArgumentMetadata) string {
	if md.Data != "" {
		return fmt.Sprintf("%s %q", md.Type, md.Data)
	}
	return string(md.Type)
}

// ── ParseInt ─────────────────────────────────────────────────────────────────

// ParseIntPipe converts a decimal string to int. Values that are already
// whole numbers pass through.
type ParseIntPipe struct {
	Logger *zap.Logger
}

// ParseInt returns a ParseIntPipe without logging.
func ParseInt() *ParseIntPipe { return &ParseIntPipe{} }

func (p *ParseIntPipe) Transform(_ context.Context, value any, md gohttp.ArgumentMetadata) (any, error) {
	n, ok := toInt(value)
	if !ok {
		return nil, gohttp.BadRequest(fmt.Sprintf("Validation failed: %s must be an integer", where(md)))
	}
	if p.Logger != nil {
		p.Logger.Debug("parsed int", zap.String("param", md.Data), zap.Int("value", n))
	}
	return n, nil
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float64:
		if v != math.Trunc(v) || v < math.MinInt || v >= -math.MinInt {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// ── ParseBool ────────────────────────────────────────────────────────────────

// ParseBoolPipe converts "true"/"false" (and the forms strconv.ParseBool
// accepts) to bool.
type ParseBoolPipe struct{}

// ParseBool returns a ParseBoolPipe.
func ParseBool() ParseBoolPipe { return ParseBoolPipe{} }

func (ParseBoolPipe) Transform(_ context.Context, value any, md gohttp.ArgumentMetadata) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b, nil
		}
	}
	return nil, gohttp.BadRequest(fmt.Sprintf("Validation failed: %s must be a boolean", where(md)))
}

// ── DefaultValue ─────────────────────────────────────────────────────────────

// DefaultValuePipe substitutes Value when the input is missing or empty.
// Place it before parsing pipes.
type DefaultValuePipe struct {
	Value any
}

// DefaultValue returns a DefaultValuePipe.
//
//	c.Get("", "List").Query(0, "page", pipes.DefaultValue("1"), pipes.ParseInt())
func DefaultValue(v any) DefaultValuePipe { return DefaultValuePipe{Value: v} }

func (p DefaultValuePipe) Transform(_ context.Context, value any, _ gohttp.ArgumentMetadata) (any, error) {
	if value == nil {
		return p.Value, nil
	}
	if s, ok := value.(string); ok && s == "" {
		return p.Value, nil
	}
	return value, nil
}

// ── Validation ───────────────────────────────────────────────────────────────

// ValidationPipe checks an object against validation rules and passes it
// through unchanged. Failures become 400 with every message listed.
type ValidationPipe struct {
	Rules validation.Rules
}

// Validate returns a ValidationPipe for rules.
//
//	c.Post("", "Create").Body(0, "", pipes.Validate(validation.Rules{
//	    "title": "required|max:200",
//	    "year":  "nullable|integer|gte:1000|lte:2100",
//	}))
func Validate(rules validation.Rules) ValidationPipe { return ValidationPipe{Rules: rules} }

func (p ValidationPipe) Transform(_ context.Context, value any, md gohttp.ArgumentMetadata) (any, error) {
	var data map[string]any
	switch v := value.(type) {
	case map[string]any:
		data = v
	case nil:
		data = map[string]any{}
	default:
		return nil, gohttp.BadRequest(fmt.Sprintf("Validation failed: %s must be an object", where(md)))
	}

	v := validation.MakeFromMap(data, p.Rules)
	if v.Fails() {
		return nil, gohttp.BadRequest("Validation failed: " + v.Errors().Error())
	}
	return value, nil
}
