package pipeline

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

var (
	contextType   = reflect.TypeFor[context.Context]()
	requestType   = reflect.TypeFor[*gohttp.Request]()
	responseType  = reflect.TypeFor[*gohttp.Response]()
	execCtxType   = reflect.TypeFor[gohttp.ExecutionContext]()
	rawReqType    = reflect.TypeFor[*http.Request]()
	rawWriterType = reflect.TypeFor[http.ResponseWriter]()
)

// materialize builds the handler arguments. Bound parameters are extracted
// and piped in index order; the first failing pipe aborts the request.
func (p *Pipeline) materialize(ctx context.Context, ec gohttp.ExecutionContext, rt *route) ([]reflect.Value, error) {
	host := ec.SwitchToHTTP()
	args := make([]reflect.Value, len(rt.argType))

	for _, md := range rt.params {
		value, err := extract(host.Request(), md)
		if err != nil {
			return nil, err
		}

		pipes, err := p.pipeChain(ctx, rt, md)
		if err != nil {
			return nil, err
		}
		for _, pipe := range pipes {
			if value, err = pipe.Transform(ctx, value, md); err != nil {
				return nil, err
			}
		}

		arg, err := coerce(value, rt.argType[md.Index])
		if err != nil {
			return nil, gohttp.BadRequest(fmt.Sprintf("Invalid value for %s %s: %v", md.Type, describe(md), err))
		}
		args[md.Index] = arg
	}

	for i, t := range rt.argType {
		if _, ok := rt.bound[i]; ok {
			continue
		}
		args[i] = implicit(t, ec)
	}
	return args, nil
}

// extract reads the raw value for md. A missing key yields nil.
func extract(req *gohttp.Request, md gohttp.ArgumentMetadata) (any, error) {
	var source map[string]any
	key := md.Data

	switch md.Type {
	case gohttp.ParamBody:
		body, err := req.Body()
		if err != nil {
			return nil, err
		}
		if key == "" {
			return body, nil
		}
		m, _ := body.(map[string]any)
		return m[key], nil
	case gohttp.ParamQuery:
		source = req.QueryParams()
	case gohttp.ParamPath:
		source = req.Params()
	case gohttp.ParamHeaders:
		source = req.Headers()
		key = strings.ToLower(key)
	case gohttp.ParamCookies:
		source = req.Cookies()
	default:
		return nil, fmt.Errorf("unknown parameter source %q", md.Type)
	}

	if key == "" {
		return source, nil
	}
	return source[key], nil
}

// coerce converts a piped value to the declared parameter type. Assignable
// values pass through; maps decode into structs by json tag; scalars are
// weakly converted ("42" → 42).
func coerce(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(v)
		return out, nil
	}
	if v.Type().ConvertibleTo(t) && isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		if err := fitNumber(v, t); err != nil {
			return reflect.Value{}, err
		}
		return v.Convert(t), nil
	}

	out := reflect.New(t)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(numericHook),
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := dec.Decode(value); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}

// numericHook applies the fitNumber check to numbers nested inside structs,
// maps and slices.
func numericHook(from, to reflect.Type, data any) (any, error) {
	if data == nil || !isNumeric(from.Kind()) || !isNumeric(to.Kind()) {
		return data, nil
	}
	if err := fitNumber(reflect.ValueOf(data), to); err != nil {
		return nil, err
	}
	return data, nil
}

// fitNumber rejects conversions that would truncate a fraction or wrap.
func fitNumber(v reflect.Value, t reflect.Type) error {
	dst := reflect.Zero(t)
	switch {
	case isInt(t.Kind()):
		var n int64
		switch {
		case isFloat(v.Kind()):
			f := v.Float()
			if f != math.Trunc(f) {
				return fmt.Errorf("%v is not an integer", f)
			}
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return fmt.Errorf("%v overflows %s", f, t)
			}
			n = int64(f)
		case isUint(v.Kind()):
			if v.Uint() > math.MaxInt64 {
				return fmt.Errorf("%v overflows %s", v.Uint(), t)
			}
			n = int64(v.Uint())
		default:
			n = v.Int()
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("%v overflows %s", n, t)
		}
	case isUint(t.Kind()):
		var u uint64
		switch {
		case isFloat(v.Kind()):
			f := v.Float()
			if f != math.Trunc(f) {
				return fmt.Errorf("%v is not an integer", f)
			}
			if f < 0 || f >= math.MaxUint64 {
				return fmt.Errorf("%v overflows %s", f, t)
			}
			u = uint64(f)
		case isInt(v.Kind()):
			if v.Int() < 0 {
				return fmt.Errorf("%v overflows %s", v.Int(), t)
			}
			u = uint64(v.Int())
		default:
			u = v.Uint()
		}
		if dst.OverflowUint(u) {
			return fmt.Errorf("%v overflows %s", u, t)
		}
	case isFloat(t.Kind()):
		var f float64
		switch {
		case isInt(v.Kind()):
			f = float64(v.Int())
		case isUint(v.Kind()):
			f = float64(v.Uint())
		default:
			f = v.Float()
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("%v overflows %s", f, t)
		}
	}
	return nil
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// implicit supplies unbound parameters by type.
func implicit(t reflect.Type, ec gohttp.ExecutionContext) reflect.Value {
	host := ec.SwitchToHTTP()
	var v any
	switch t {
	case contextType:
		v = ec.Context()
	case requestType:
		v = host.Request()
	case responseType:
		v = host.Response()
	case execCtxType:
		v = ec
	case rawReqType:
		v = host.Request().Raw()
	case rawWriterType:
		v = host.Response().Raw()
	default:
		return reflect.Zero(t)
	}
	out := reflect.New(t).Elem()
	out.Set(reflect.ValueOf(v))
	return out
}

func describe(md gohttp.ArgumentMetadata) string {
	if md.Data != "" {
		return fmt.Sprintf("%q", md.Data)
	}
	return fmt.Sprintf("#%d", md.Index)
}
