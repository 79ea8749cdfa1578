package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"mobipaid-gateway/internal/domain/gateway"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

// LoggingMiddleware アクセスログミドルウェア
// 検証トークン（mp_token）はログに残さない
func LoggingMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			uri := gateway.RedactToken(req.URL.RequestURI())

			logger.Info(req.Context(), "HTTP request started", map[string]interface{}{
				"method":      req.Method,
				"uri":         uri,
				"remote_addr": req.RemoteAddr,
				"user_agent":  req.UserAgent(),
				"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
			})

			err := next(c)

			fields := map[string]interface{}{
				"method":      req.Method,
				"uri":         uri,
				"route":       c.Path(),
				"status_code": c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
			}

			if err != nil {
				logger.Error(c.Request().Context(), "HTTP request failed", err, fields)
			} else {
				logger.Info(c.Request().Context(), "HTTP request completed", fields)
			}

			return err
		}
	}
}
