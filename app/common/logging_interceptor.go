package common

import (
	"time"

	"go.uber.org/zap"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

// LoggingInterceptor logs each handler call with its duration.
type LoggingInterceptor struct {
	logger *zap.Logger
}

func NewLoggingInterceptor(logger *zap.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingInterceptor{logger: logger.Named("interceptor")}
}

func (i *LoggingInterceptor) Intercept(ctx gohttp.ExecutionContext, next gohttp.CallHandler) (any, error) {
	req := ctx.SwitchToHTTP().Request()
	handler := ctx.Class().Name() + "." + ctx.Handler().Name
	fields := []zap.Field{
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
		zap.String("ip", req.IP()),
		zap.String("handler", handler),
		zap.String("request_id", ctx.RequestID()),
	}

	start := time.Now()
	i.logger.Debug("before", fields...)

	result, err := next.Handle()

	fields = append(fields, zap.Duration("duration", time.Since(start)))
	if err != nil {
		i.logger.Info("failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	i.logger.Info("handled", fields...)
	return result, nil
}
