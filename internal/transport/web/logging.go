package web

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/DanielPodolsky/YelpCamp/internal/observability"
)

// RequestLogger emits one structured line per request and feeds the HTTP
// metrics. The route pattern is used for the metric label so campground IDs
// do not explode the cardinality.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			elapsed := time.Since(start)
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			observability.ObserveHTTP(route, c.Request().Method, status, elapsed)

			event := log.Info()
			if status >= 500 {
				event = log.Error()
			}
			event.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Dur("elapsed", elapsed).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return nil
		}
	}
}
