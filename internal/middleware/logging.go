package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"wellnesshub/internal/logger"
)

// LoggerKey is the context key of the request-scoped logger.
const LoggerKey = "logger"

// RequestLogger logs each completed request with its request id. It must run after
// echo's RequestID middleware.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			requestLogger := logger.WithRequestID(log, requestID)
			c.Set(LoggerKey, requestLogger)

			start := time.Now()
			err := next(c)
			if err != nil {
				// Written here so the logged status is final.
				c.Error(err)
			}

			req := c.Request()
			requestLogger.Info("request completed",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("size", c.Response().Size),
				zap.String("client_ip", c.RealIP()),
			)
			return nil
		}
	}
}
