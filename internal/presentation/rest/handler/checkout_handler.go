package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	gatewayapp "mobipaid-gateway/internal/application/gateway"
	"mobipaid-gateway/internal/domain/order"
)

// CheckoutHandler チェックアウト関連ハンドラー
type CheckoutHandler struct {
	gateway gatewayapp.PaymentGateway
}

// NewCheckoutHandler 新しいCheckoutHandlerを作成
func NewCheckoutHandler(gateway gatewayapp.PaymentGateway) *CheckoutHandler {
	return &CheckoutHandler{
		gateway: gateway,
	}
}

// ProcessPayment 決済開始ハンドラー
// @Summary 決済を開始
// @Description 注文の決済リンクを作成し、リダイレクト先を返します
// @Tags checkout
// @Produce json
// @Param order_id path int true "注文ID"
// @Param key query string true "注文キー"
// @Success 200 {object} ProcessPaymentResponse "決済リンク作成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 403 {object} ErrorResponse "注文キー不一致"
// @Failure 409 {object} ErrorResponse "支払い待ちでない注文"
// @Failure 422 {object} ErrorResponse "通貨非対応"
// @Failure 502 {object} ErrorResponse "決済リクエスト失敗"
// @Failure 503 {object} ErrorResponse "ゲートウェイ利用不可"
// @Router /checkout/{order_id} [post]
func (h *CheckoutHandler) ProcessPayment(c echo.Context) error {
	orderID, err := parseOrderID(c.Param("order_id"))
	if err != nil {
		return err
	}

	resp, err := h.gateway.ProcessPayment(c.Request().Context(), orderID, c.QueryParam(order.KeyQueryParam))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ProcessPaymentResponse{
		Result:   resp.Result,
		Redirect: resp.Redirect,
	})
}
