package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	gatewayapp "mobipaid-gateway/internal/application/gateway"
)

// RefundHandler 返金関連ハンドラー
type RefundHandler struct {
	gateway gatewayapp.PaymentGateway
}

// NewRefundHandler 新しいRefundHandlerを作成
func NewRefundHandler(gateway gatewayapp.PaymentGateway) *RefundHandler {
	return &RefundHandler{
		gateway: gateway,
	}
}

// ProcessRefund 一部返金ハンドラー
// @Summary 返金を実行
// @Description 注文を指定額返金します
// @Tags refund
// @Accept json
// @Produce json
// @Security Bearer
// @Param order_id path int true "注文ID"
// @Param request body ProcessRefundRequest true "返金リクエスト"
// @Success 200 {object} ProcessRefundResponse "返金成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "注文が存在しない"
// @Failure 409 {object} ErrorResponse "決済IDなし"
// @Failure 502 {object} ErrorResponse "返金失敗"
// @Router /orders/{order_id}/refunds [post]
func (h *RefundHandler) ProcessRefund(c echo.Context) error {
	orderID, err := parseOrderID(c.Param("order_id"))
	if err != nil {
		return err
	}

	var reqBody ProcessRefundRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.gateway.ProcessRefund(c.Request().Context(), orderID, reqBody.Amount, reqBody.Reason)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ProcessRefundResponse{
		OrderID:   resp.OrderID,
		PaymentID: resp.PaymentID,
		Amount:    resp.Amount,
		Refunded:  resp.Refunded,
	})
}
