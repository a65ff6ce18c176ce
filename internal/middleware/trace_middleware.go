package middleware

import (
	"context"

	"postPilot/business/optimizer"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TraceID propagates the caller's X-Request-ID into the request context,
// minting a fresh one when absent, so service-level logs correlate with
// the HTTP exchange.
func TraceID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tid := c.Request().Header.Get(echo.HeaderXRequestID)
			if tid == "" {
				tid = uuid.NewString()
			}

			ctx := context.WithValue(c.Request().Context(), optimizer.TraceIDKey, tid)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(echo.HeaderXRequestID, tid)

			return next(c)
		}
	}
}
