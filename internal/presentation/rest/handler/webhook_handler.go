package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	notificationapp "mobipaid-gateway/internal/application/notification"
	orderapp "mobipaid-gateway/internal/application/order"
	"mobipaid-gateway/internal/domain/gateway"
	"mobipaid-gateway/internal/domain/order"
)

// maxWebhookBody 通知本文の上限
const maxWebhookBody = 64 << 10

// WebhookProcessor 決済結果通知の処理
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, req *notificationapp.HandleWebhookRequest) (*notificationapp.HandleWebhookResponse, error)
}

// OrderReader 注文の表示用データ取得
type OrderReader interface {
	GetReceivedOrder(ctx context.Context, req *orderapp.GetReceivedOrderRequest) (*orderapp.OrderView, error)
}

// WebhookHandler 決済結果通知と完了ページのハンドラー
type WebhookHandler struct {
	processor WebhookProcessor
	orders    OrderReader
}

// NewWebhookHandler 新しいWebhookHandlerを作成
func NewWebhookHandler(processor WebhookProcessor, orders OrderReader) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		orders:    orders,
	}
}

// OrderReceived 完了ページ
// @Summary 注文完了ページ
// @Description 注文の表示用データを返します。mp_token付きのPOSTは決済結果通知として処理し、確定時は"OK"を返します
// @Tags webhook
// @Accept json
// @Produce json
// @Param order_id path int true "注文ID"
// @Param key query string false "注文キー（完了ページ表示時は必須）"
// @Param mp_token query string false "検証トークン"
// @Success 200 {object} OrderViewResponse "注文"
// @Failure 403 {object} ErrorResponse "注文キー不一致"
// @Failure 404 {object} ErrorResponse "注文が存在しない"
// @Router /orders/{order_id}/received [get]
// @Router /orders/{order_id}/received [post]
func (h *WebhookHandler) OrderReceived(c echo.Context) error {
	orderID, err := parseOrderID(c.Param("order_id"))
	if err != nil {
		return err
	}

	if c.Request().Method == http.MethodPost {
		handled, err := h.handle(c, orderID)
		if err != nil {
			return err
		}
		if handled {
			return c.String(http.StatusOK, "OK")
		}
	}

	view, err := h.orders.GetReceivedOrder(c.Request().Context(), &orderapp.GetReceivedOrderRequest{
		OrderID:  orderID,
		OrderKey: c.QueryParam(order.KeyQueryParam),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderViewResponse(view))
}

// ResponseURL 決済結果通知の専用エンドポイント
// @Summary 決済結果通知
// @Description Mobipaidからの決済結果通知を検証し、注文ステータスを更新します
// @Tags webhook
// @Accept json
// @Produce json
// @Param order_id query int true "注文ID"
// @Param mp_token query string true "検証トークン"
// @Success 200 {object} WebhookResponse "処理結果"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Router /mobipaid/response_url [post]
func (h *WebhookHandler) ResponseURL(c echo.Context) error {
	orderID, err := parseOrderID(c.QueryParam("order_id"))
	if err != nil {
		return err
	}

	resp, err := h.process(c, orderID)
	if err != nil {
		return err
	}
	if resp.Handled {
		return c.String(http.StatusOK, "OK")
	}
	return c.JSON(http.StatusOK, WebhookResponse{Handled: false, Outcome: resp.Outcome})
}

func (h *WebhookHandler) handle(c echo.Context, orderID int64) (bool, error) {
	if c.QueryParam(gateway.TokenQueryParam) == "" {
		return false, nil
	}
	resp, err := h.process(c, orderID)
	if err != nil {
		return false, err
	}
	return resp.Handled, nil
}

func (h *WebhookHandler) process(c echo.Context, orderID int64) (*notificationapp.HandleWebhookResponse, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	return h.processor.HandleWebhook(c.Request().Context(), &notificationapp.HandleWebhookRequest{
		OrderID: orderID,
		Token:   c.QueryParam(gateway.TokenQueryParam),
		Body:    body,
	})
}
