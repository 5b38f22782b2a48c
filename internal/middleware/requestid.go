package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID adds a unique request ID to each request and a logger scoped to
// it, both on the echo context and the request context
func RequestID(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Keep an id assigned upstream
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			c.Request().Header.Set(RequestIDHeader, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)
			c.Set("request_id", requestID)

			reqLogger := base.With(zap.String("request_id", requestID))
			c.Set("logger", reqLogger)
			c.SetRequest(c.Request().WithContext(logger.WithLogger(c.Request().Context(), reqLogger)))

			return next(c)
		}
	}
}
