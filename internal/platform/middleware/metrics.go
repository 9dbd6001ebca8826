package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// HTTPRecorder receives one observation per request.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, d time.Duration)
}

// Metrics records method, route template and final status. The route
// template (c.Path) keeps label cardinality bounded.
func Metrics(rec HTTPRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			rec.RecordHTTPRequest(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}
