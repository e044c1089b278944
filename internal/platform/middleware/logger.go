package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/woundcare/woundcare/internal/platform/auth"
)

// Logger emits one structured line per request after the handler chain
// returns. The clinician id is only present once auth has run, so
// unauthenticated probes log without it.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			if uid := auth.UserIDFromContext(req.Context()); uid != "" {
				evt = evt.Str("clinician_id", uid)
			}

			evt.
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("http request")

			return err
		}
	}
}
