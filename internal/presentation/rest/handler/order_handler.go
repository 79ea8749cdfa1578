package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	orderapp "mobipaid-gateway/internal/application/order"
)

// OrderStatusChanger 注文ステータス変更
type OrderStatusChanger interface {
	ChangeStatus(ctx context.Context, req *orderapp.ChangeStatusRequest) (*orderapp.ChangeStatusResponse, error)
}

// OrderHandler 注文関連ハンドラー
type OrderHandler struct {
	orders OrderStatusChanger
}

// NewOrderHandler 新しいOrderHandlerを作成
func NewOrderHandler(orders OrderStatusChanger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
	}
}

// ChangeStatus 注文ステータス変更ハンドラー
// @Summary 注文ステータスを変更
// @Description 注文ステータスを変更します。処理中/完了から返金済みへの変更では全額返金が行われ、失敗すると変更は中断されます
// @Tags order
// @Accept json
// @Produce json
// @Security ApiKey
// @Param order_id path int true "注文ID"
// @Param request body ChangeStatusRequest true "ステータス変更リクエスト"
// @Success 200 {object} ChangeStatusResponse "変更結果"
// @Failure 400 {object} ErrorResponse "不正なステータス"
// @Failure 404 {object} ErrorResponse "注文が存在しない"
// @Failure 409 {object} ErrorResponse "全額返金失敗"
// @Router /orders/{order_id}/status [put]
func (h *OrderHandler) ChangeStatus(c echo.Context) error {
	orderID, err := parseOrderID(c.Param("order_id"))
	if err != nil {
		return err
	}

	var reqBody ChangeStatusRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.orders.ChangeStatus(c.Request().Context(), &orderapp.ChangeStatusRequest{
		OrderID: orderID,
		Status:  reqBody.Status,
		Note:    reqBody.Note,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ChangeStatusResponse{
		OrderID: resp.OrderID,
		From:    resp.From,
		To:      resp.To,
		Changed: resp.Changed,
	})
}
