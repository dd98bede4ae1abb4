package core

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

var defaultLogger = func() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l.Sugar()
}()

// WithDefaultLogger returns a context carrying a request-scoped logger.
func WithDefaultLogger(parent context.Context, reqID string) context.Context {
	return context.WithValue(parent, loggerKey{}, defaultLogger.With("request_id", reqID))
}

func loggerFrom(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zap.SugaredLogger); ok {
			return l
		}
	}
	return defaultLogger
}

func Infof(ctx context.Context, tpl string, args ...any) {
	loggerFrom(ctx).Infof(tpl, args...)
}

func Errorf(ctx context.Context, tpl string, args ...any) {
	loggerFrom(ctx).Errorf(tpl, args...)
}

func Debugf(ctx context.Context, tpl string, args ...any) {
	loggerFrom(ctx).Debugf(tpl, args...)
}
