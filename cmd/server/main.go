package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authapp "mobipaid-gateway/internal/application/auth"
	checkoutapp "mobipaid-gateway/internal/application/checkout"
	gatewayapp "mobipaid-gateway/internal/application/gateway"
	notificationapp "mobipaid-gateway/internal/application/notification"
	orderapp "mobipaid-gateway/internal/application/order"
	refundapp "mobipaid-gateway/internal/application/refund"
	"mobipaid-gateway/internal/domain/gateway"
	"mobipaid-gateway/internal/domain/order"
	"mobipaid-gateway/internal/domain/service"
	"mobipaid-gateway/internal/infrastructure/config"
	"mobipaid-gateway/internal/infrastructure/lock"
	"mobipaid-gateway/internal/infrastructure/mobipaid"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
	"mobipaid-gateway/internal/infrastructure/persistence/mysql"
	grpcserver "mobipaid-gateway/internal/presentation/grpc"
	"mobipaid-gateway/internal/presentation/rest"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	ctx := context.Background()
	tracer := otelinfra.Tracer("mobipaid-gateway")
	logger := otelinfra.NewLogger(tracer)
	if level, err := otelinfra.ParseLogLevel(cfg.LogLevel); err != nil {
		logger.Warn(ctx, "Invalid LOG_LEVEL, falling back to INFO", map[string]interface{}{"value": cfg.LogLevel})
		logger.SetLevel(otelinfra.LogLevelInfo)
	} else {
		logger.SetLevel(level)
	}
	logger.HandleOTelErrors()
	metrics, err := otelinfra.NewMetrics("mobipaid-gateway")
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}
	gatewayLog := otelinfra.NewGatewayLogger(logger, cfg.Mobipaid.EnableLogging)

	for _, w := range cfg.Warnings() {
		logger.Warn(ctx, w, nil)
	}

	// データベース接続の初期化
	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.ApplySchema(ctx); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
	}

	// 注文ロックの初期化
	locker, closeLocker := newLocker(ctx, cfg, logger)
	defer closeLocker()

	// リポジトリの初期化
	orderRepo := mysql.NewOrderRepository(db)
	sessionRepo := mysql.NewPaymentSessionRepository(db)

	// ドメインサービスの初期化
	tokenService := service.NewTokenService(sessionRepo)

	// 決済APIクライアントの初期化
	client := mobipaid.NewClient(&mobipaid.ClientConfig{
		AccessKey: cfg.Mobipaid.AccessKey,
		LiveURL:   cfg.Mobipaid.LiveAPIURL,
		TestURL:   cfg.Mobipaid.TestAPIURL,
		Timeout:   cfg.Mobipaid.HTTPTimeout,
	})

	// アプリケーションサービスの初期化
	checkoutAppService := checkoutapp.NewCheckoutApplicationService(
		orderRepo,
		sessionRepo,
		tokenService,
		locker,
		client,
		checkoutapp.NewURLBuilder(cfg.Server.PublicBaseURL),
		logger,
		gatewayLog,
		metrics,
	)

	notificationAppService := notificationapp.NewNotificationApplicationService(
		orderRepo,
		sessionRepo,
		tokenService,
		locker,
		logger,
		gatewayLog,
		metrics,
	)

	refundAppService := refundapp.NewRefundApplicationService(
		orderRepo,
		sessionRepo,
		client,
		logger,
		gatewayLog,
		metrics,
	)

	dispatcher := orderapp.NewHookDispatcher(logger)
	orderAppService := orderapp.NewOrderApplicationService(orderRepo, locker, dispatcher, logger)

	mobipaidGateway := gatewayapp.NewMobipaidGateway(
		gateway.Settings{
			Enabled:       cfg.Mobipaid.Enabled,
			Title:         cfg.Mobipaid.Title,
			Description:   cfg.Mobipaid.Description,
			AccessKey:     cfg.Mobipaid.AccessKey,
			EnableLogging: cfg.Mobipaid.EnableLogging,
		},
		checkoutAppService,
		refundAppService,
		logger,
	)
	mobipaidGateway.RegisterHooks(dispatcher)

	authAppService := authapp.NewAuthApplicationService(&cfg.JWT, logger)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(cfg, logger, metrics, rest.Services{
		Gateway:  mobipaidGateway,
		Webhooks: notificationAppService,
		Orders:   orderAppService,
		Auth:     authAppService,
		Health:   db,
	})
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// gRPCサーバーの初期化
	grpcSrv, err := grpcserver.NewServer(cfg, logger, mobipaidGateway, orderAppService)
	if err != nil {
		log.Fatalf("Failed to create gRPC server: %v", err)
	}

	// サーバーアドレスの設定
	address := fmt.Sprintf(":%d", cfg.Server.Port)

	// グレースフルシャットダウンの設定
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// REST APIサーバーを別ゴルーチンで起動
	go func() {
		logger.Info(ctx, "REST API server starting", map[string]interface{}{"address": address})
		if err := router.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "REST API server error", err, nil)
		}
	}()

	// gRPCサーバーを別ゴルーチンで起動
	go func() {
		if err := grpcSrv.Start(); err != nil {
			logger.Error(ctx, "gRPC server error", err, nil)
		}
	}()

	// シグナルを待機
	<-quit
	logger.Info(ctx, "Shutting down servers", nil)

	// グレースフルシャットダウン
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// REST APIサーバーのシャットダウン
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Error shutting down REST API server", err, nil)
	}

	// gRPCサーバーのシャットダウン
	if err := grpcSrv.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error shutting down gRPC server", err, nil)
	}

	logger.Info(ctx, "Servers stopped", nil)
}

// newLocker Redisが有効な場合は分散ロック、無効な場合はプロセス内ロックを返す
func newLocker(ctx context.Context, cfg *config.Config, logger *otelinfra.Logger) (order.Locker, func()) {
	if !cfg.Redis.Enabled {
		logger.Info(ctx, "Redis is disabled, using in-process order lock", nil)
		return lock.NewLocalLocker(), func() {}
	}

	client, err := lock.NewRedisClient(ctx, cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	return lock.NewRedisLocker(client, cfg.Redis.LockTTL), func() {
		if err := client.Close(); err != nil {
			logger.Error(ctx, "Failed to close redis client", err, nil)
		}
	}
}
