package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/optomall/optomall/internal/app"
	"github.com/optomall/optomall/internal/auth"
	"github.com/optomall/optomall/internal/currency"
	"github.com/optomall/optomall/internal/imageproxy"
	"github.com/optomall/optomall/internal/marketplace"
	"github.com/optomall/optomall/internal/orders"
	"github.com/optomall/optomall/internal/platform/cache"
	"github.com/optomall/optomall/internal/platform/db"
	"github.com/optomall/optomall/internal/shop"
	"github.com/optomall/optomall/internal/upstream"
	"github.com/optomall/optomall/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tmapiClient := upstream.New(cfg.TMAPIBaseURL, cfg.TMAPIToken, cfg.TMAPITimeout, logger)
	upstreamCache := upstream.NewCache(redisClient, cfg.DetailCacheTTL)
	// Search entries live for one process lifetime; a restart starts a
	// fresh cache generation.
	if err := upstreamCache.Bump(ctx); err != nil {
		logger.Warn("bump upstream cache version", slog.Any("error", err))
	}

	marketplaceService := marketplace.NewService(tmapiClient, upstreamCache, logger)
	marketplaceHandler := marketplace.NewHandler(logger, marketplaceService)

	proxy := imageproxy.New(logger, redisClient, cfg.ImageProxyTimeout)

	shopStore := shop.NewStore(redisClient, cfg.SessionTTL)
	shopRepo := shop.NewRepository(dbpool)
	shopHandler := shop.NewHandler(logger, shopStore, shopRepo)

	currencyHandler := currency.NewHandler()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	ordersRepo := orders.NewRepository(dbpool)
	qrGenerator := orders.NewQRGenerator(cfg.MediaDir, logger)
	ordersService := orders.NewService(ordersRepo, qrGenerator, jobClient, logger)
	ordersHandler := orders.NewHandler(logger, ordersService)

	adminGate := auth.NewAdmin(logger, cfg.AdminTokenHash)
	if !adminGate.Enabled() {
		logger.Warn("admin token not configured, admin routes disabled")
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		MarketplaceHandler: marketplaceHandler,
		ImageProxy:         proxy,
		ShopHandler:        shopHandler,
		CurrencyHandler:    currencyHandler,
		OrdersHandler:      ordersHandler,
		AdminGate:          adminGate,
		JobHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
