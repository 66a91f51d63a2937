package logger

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

// GinRequests attaches a request-scoped logger to the request context and logs each
// request once it completes. Handlers retrieve it with zerolog.Ctx.
func GinRequests(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()

		ctx := logger.With().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("remote_addr", c.Request.RemoteAddr).
			Logger().WithContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		event := zerolog.Ctx(ctx).Info()
		switch {
		case status >= 500:
			event = zerolog.Ctx(ctx).Error()
		case status >= 400:
			event = zerolog.Ctx(ctx).Warn()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Int("status", status).
			Int("size", c.Writer.Size()).
			Dur("duration", time.Since(started)).
			Msg("http request")
	}
}
