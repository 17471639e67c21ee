package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "FinGauge/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns a handler panic into an enveloped 500 and keeps the
// server alive. The stack goes to the log, never to the client.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					if l != nil {
						l.Error("handler panic",
							applogger.String("path", c.Request().URL.Path),
							applogger.String("stack", string(debug.Stack())),
							applogger.Error(err),
						)
					}
					// Same envelope shape the response helpers write.
					// Inlined here because importing them would cycle.
					if !c.Response().Committed {
						_ = c.JSON(http.StatusOK, map[string]interface{}{
							"status":  http.StatusInternalServerError,
							"message": http.StatusText(http.StatusInternalServerError),
						})
					}
				}
			}()
			return next(c)
		}
	}
}
