package handler

import (
	"log/slog"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// LoggingErrorHandler renders errors as JSON and logs 5xx at error level and
// everything else at warn.
func LoggingErrorHandler[C Context](log *slog.Logger) ErrorHandler[C] {
	return func(ctx C, err error) {
		status, _ := classify(err)
		r := ctx.Request()
		level := slog.LevelWarn
		if status >= 500 {
			level = slog.LevelError
		}
		log.Log(ctx, level, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			logger.Error(err),
		)
		_ = JSONError(err).Render(ctx.ResponseWriter(), r)
	}
}
