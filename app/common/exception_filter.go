package common

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

// HTTPExceptionFilter renders every failure with a timestamp, the request
// path and the request id. Errors that are not a *gohttp.Exception become a
// 500 carrying the error text.
type HTTPExceptionFilter struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewHTTPExceptionFilter(logger *zap.Logger) *HTTPExceptionFilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPExceptionFilter{logger: logger.Named("filter"), now: time.Now}
}

func (f *HTTPExceptionFilter) Catch(err error, host gohttp.ArgumentsHost) error {
	h := host.SwitchToHTTP()
	req, res := h.Request(), h.Response()

	e, ok := gohttp.AsException(err)
	if !ok {
		f.logger.Error("unhandled error", zap.Error(err), zap.String("path", req.Path()))
		e = &gohttp.Exception{
			Status:  http.StatusInternalServerError,
			Message: err.Error(),
			Name:    "Internal Server Error",
		}
	}

	body := e.Response()
	body["timestamp"] = f.now().UTC().Format(time.RFC3339)
	body["path"] = req.URL().RequestURI()
	if ec, ok := host.(gohttp.ExecutionContext); ok {
		body["requestId"] = ec.RequestID()
	}

	f.logger.Info(req.Method()+" "+req.Path(),
		zap.Int("status", e.Status),
		zap.String("message", e.Message),
	)
	res.JSON(e.Status, body)
	return nil
}
