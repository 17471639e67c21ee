package middleware

import (
	"time"

	applogger "FinGauge/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging writes one structured line per served request. Paths
// in skip, typically the metrics scrape, pass through silently.
func RequestLogging(l *applogger.Logger, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			if l == nil {
				return err
			}
			if _, ok := skipped[c.Request().URL.Path]; ok {
				return err
			}
			l.Info("http request",
				applogger.String("method", c.Request().Method),
				applogger.String("path", c.Request().URL.Path),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("duration_ms", time.Since(start)),
			)
			return err
		}
	}
}
