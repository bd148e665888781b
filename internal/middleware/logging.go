package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// Logging writes a concise key=value line for each HTTP request.
func Logging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			log.Printf("request_id=%s method=%s path=%s origin=%q status=%d latency=%s",
				RequestIDFromContext(c), req.Method, req.URL.Path, req.Header.Get(echo.HeaderOrigin), c.Response().Status, latency)

			return err
		}
	}
}
