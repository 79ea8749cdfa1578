package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	gatewayapp "mobipaid-gateway/internal/application/gateway"
)

// GatewayHandler ゲートウェイ情報ハンドラー
type GatewayHandler struct {
	gateway gatewayapp.PaymentGateway
}

// NewGatewayHandler 新しいGatewayHandlerを作成
func NewGatewayHandler(gateway gatewayapp.PaymentGateway) *GatewayHandler {
	return &GatewayHandler{
		gateway: gateway,
	}
}

// GetInfo ゲートウェイ情報取得ハンドラー
// @Summary ゲートウェイ情報
// @Description チェックアウトでの表示名・利用可否・対応機能を返します
// @Tags gateway
// @Produce json
// @Success 200 {object} gatewayapp.GatewayInfo "ゲートウェイ情報"
// @Router /gateway [get]
func (h *GatewayHandler) GetInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, h.gateway.Info())
}
