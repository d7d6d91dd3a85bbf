package pipeline

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

// handleError offers err to the filter chain (handler → controller →
// global). The first filter that returns nil without panicking has handled
// it; otherwise the built-in renderer responds.
func (p *Pipeline) handleError(ec gohttp.ExecutionContext, rt *route, err error) {
	for _, item := range p.filterItems(rt) {
		if p.tryFilter(ec, item, err) {
			return
		}
	}
	p.fallback(ec, rt, err)
}

func (p *Pipeline) tryFilter(ec gohttp.ExecutionContext, item any, err error) (handled bool) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Warn("exception filter panicked", zap.Any("panic", rec), zap.String("request_id", ec.RequestID()))
			handled = false
		}
	}()

	v, ierr := p.instance(ec.Context(), item)
	if ierr != nil {
		p.logger.Warn("exception filter unavailable", zap.Error(ierr))
		return false
	}
	f, ok := v.(gohttp.ExceptionFilter)
	if !ok {
		p.logger.Warn("exception filter skipped", zap.Error(ErrInvalidEnhancer), zap.String("type", fmt.Sprintf("%T", v)))
		return false
	}
	if ferr := f.Catch(err, ec); ferr != nil {
		p.logger.Debug("exception filter declined", zap.Error(ferr), zap.String("request_id", ec.RequestID()))
		return false
	}
	return true
}

// fallback renders an *Exception with its own status and anything else as
// a logged 500.
func (p *Pipeline) fallback(ec gohttp.ExecutionContext, rt *route, err error) {
	res := ec.SwitchToHTTP().Response()

	e, ok := gohttp.AsException(err)
	if !ok {
		p.logger.Error("unhandled error",
			zap.Error(err),
			zap.String("handler", handlerName(rt)),
			zap.String("path", ec.SwitchToHTTP().Request().Path()),
			zap.String("request_id", ec.RequestID()),
		)
		e = &gohttp.Exception{
			Status:  http.StatusInternalServerError,
			Message: err.Error(),
			Name:    "Internal Server Error",
		}
	}

	if res.Written() {
		p.logger.Warn("response already written, error not rendered",
			zap.Error(err),
			zap.String("request_id", ec.RequestID()),
		)
		return
	}
	res.Exception(e)
}
