package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORS lets browser dashboards served from other origins call the API.
// The surface is read only, so only GET and preflight OPTIONS are
// advertised. An empty origin list means same-origin only.
func CORS(origins []string) echo.MiddlewareFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	methods := strings.Join([]string{http.MethodGet, http.MethodOptions}, ", ")
	headers := strings.Join([]string{echo.HeaderContentType, echo.HeaderAccept}, ", ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			_, ok := allowed[origin]
			if origin != "" && (allowAll || ok) {
				h := c.Response().Header()
				if allowAll {
					h.Set(echo.HeaderAccessControlAllowOrigin, "*")
				} else {
					h.Set(echo.HeaderAccessControlAllowOrigin, origin)
					h.Add(echo.HeaderVary, echo.HeaderOrigin)
				}
				h.Set(echo.HeaderAccessControlAllowMethods, methods)
				h.Set(echo.HeaderAccessControlAllowHeaders, headers)
			}

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
