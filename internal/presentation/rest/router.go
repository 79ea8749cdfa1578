package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	gatewayapp "mobipaid-gateway/internal/application/gateway"
	"mobipaid-gateway/internal/infrastructure/config"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
	"mobipaid-gateway/internal/presentation/rest/handler"
	restmiddleware "mobipaid-gateway/internal/presentation/rest/middleware"
)

// OrderService 注文の取得とステータス変更
type OrderService interface {
	handler.OrderReader
	handler.OrderStatusChanger
}

// HealthChecker 依存サービスの疎通確認
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Services ルーターが利用するアプリケーションサービス
type Services struct {
	Gateway  gatewayapp.PaymentGateway
	Webhooks handler.WebhookProcessor
	Orders   OrderService
	Auth     handler.TokenIssuer
	Health   HealthChecker
}

// Router REST APIルーター
type Router struct {
	echo *echo.Echo
	cfg  *config.ServerConfig
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	services Services,
) (*Router, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// エラーはErrorHandlerMiddlewareでレスポンスに変換済み
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		logger.Error(c.Request().Context(), "Unhandled error", err, nil)
		_ = c.JSON(http.StatusInternalServerError, restmiddleware.ErrorResponse{
			Error:   "internal_server_error",
			Message: "An unexpected error occurred",
		})
	}

	setupMiddleware(e, logger, metrics)

	setupRoutes(e, cfg, logger, services)

	SetupSwagger(e, cfg.Environment)

	return &Router{
		echo: e,
		cfg:  &cfg.Server,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-API-Key"},
	}))

	e.Use(middleware.RequestID())
	e.Use(restmiddleware.SecurityHeadersMiddleware())
	e.Use(restmiddleware.TracingMiddleware())
	e.Use(restmiddleware.LoggingMiddleware(logger))
	if metrics != nil {
		e.Use(restmiddleware.MetricsMiddleware(metrics))
	}
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, services Services) {
	checkoutHandler := handler.NewCheckoutHandler(services.Gateway)
	webhookHandler := handler.NewWebhookHandler(services.Webhooks, services.Orders)
	refundHandler := handler.NewRefundHandler(services.Gateway)
	orderHandler := handler.NewOrderHandler(services.Orders)
	gatewayHandler := handler.NewGatewayHandler(services.Gateway)
	authHandler := handler.NewAuthHandler(services.Auth)

	api := e.Group("/api/v1")

	// 購入者・決済サービスからのアクセス（認証なし、通知はトークンで検証）
	api.POST("/checkout/:order_id", checkoutHandler.ProcessPayment)
	api.GET("/orders/:order_id/received", webhookHandler.OrderReceived)
	api.POST("/orders/:order_id/received", webhookHandler.OrderReceived)
	api.POST("/mobipaid/response_url", webhookHandler.ResponseURL)
	api.GET("/gateway", gatewayHandler.GetInfo)

	// 管理者（JWT）
	adminGroup := api.Group("", restmiddleware.AuthMiddleware(&cfg.JWT, logger))
	adminGroup.POST("/orders/:order_id/refunds", refundHandler.ProcessRefund)

	// ショップ本体（APIキー）
	shopGroup := api.Group("", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
	shopGroup.PUT("/orders/:order_id/status", orderHandler.ChangeStatus)
	shopGroup.POST("/admin/token", authHandler.IssueToken)

	e.GET("/health", func(c echo.Context) error {
		if services.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := services.Health.HealthCheck(ctx); err != nil {
				logger.Warn(ctx, "Health check failed", map[string]interface{}{"error": err.Error()})
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler HTTPハンドラーを返す
func (r *Router) Handler() http.Handler {
	return r.echo
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	server := &http.Server{
		Addr:         address,
		Handler:      r.echo,
		ReadTimeout:  r.cfg.ReadTimeout,
		WriteTimeout: r.cfg.WriteTimeout,
		IdleTimeout:  r.cfg.IdleTimeout,
	}
	return r.echo.StartServer(server)
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}
