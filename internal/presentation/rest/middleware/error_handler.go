package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"mobipaid-gateway/internal/domain/gateway"
	"mobipaid-gateway/internal/domain/order"
	"mobipaid-gateway/internal/domain/payment_session"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			return handleError(c, err, logger)
		}
	}
}

// errorMapping ドメインエラーとHTTPレスポンスの対応
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{target: gateway.ErrUnsupportedCurrency, status: http.StatusUnprocessableEntity, code: "unsupported_currency", message: gateway.MessageUnsupportedCurrency},
	{target: gateway.ErrPaymentRequest, status: http.StatusBadGateway, code: "payment_request_failed", message: gateway.MessagePaymentRequest},
	{target: gateway.ErrGatewayUnavailable, status: http.StatusServiceUnavailable, code: "gateway_unavailable"},
	{target: gateway.ErrOrderNotHandled, status: http.StatusBadRequest, code: "order_not_handled"},
	{target: gateway.ErrInvalidRefundAmount, status: http.StatusBadRequest, code: "invalid_refund_amount"},
	{target: order.ErrOrderNotFound, status: http.StatusNotFound, code: "order_not_found"},
	{target: order.ErrInvalidOrderStatus, status: http.StatusBadRequest, code: "invalid_order_status"},
	{target: order.ErrOrderLocked, status: http.StatusConflict, code: "order_locked"},
	{target: order.ErrOrderNotPayable, status: http.StatusConflict, code: "order_not_payable"},
	{target: order.ErrInvalidOrderKey, status: http.StatusForbidden, code: "invalid_order_key"},
	{target: payment_session.ErrPaymentIDNotFound, status: http.StatusConflict, code: "payment_id_not_found"},
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// 全額返金の失敗はステータス変更の中断として扱う
	var fullErr *gateway.FullRefundError
	if errors.As(err, &fullErr) {
		logger.Error(ctx, "Full refund aborted status change", err, map[string]interface{}{
			"order_id": fullErr.OrderID,
		})
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "full_refund_failed",
			Message: fullErr.Err.Error(),
			Code:    fullErr.Err.Code,
		})
	}

	var refundErr *gateway.RefundError
	if errors.As(err, &refundErr) {
		logger.Warn(ctx, "Refund failed", map[string]interface{}{
			"code":  refundErr.Code,
			"error": refundErr.Message,
		})
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "refund_failed",
			Message: refundErr.Error(),
			Code:    refundErr.Code,
		})
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		logger.Warn(ctx, "Request failed", map[string]interface{}{
			"error": err.Error(),
			"code":  m.code,
		})
		message := m.message
		if message == "" {
			message = err.Error()
		}
		return c.JSON(m.status, ErrorResponse{
			Error:   m.code,
			Message: message,
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
