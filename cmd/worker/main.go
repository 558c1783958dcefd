package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/optomall/optomall/internal/app"
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
		slog.Default().Info("test mode detected, skipping worker startup")
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
	marketplaceService := marketplace.NewService(tmapiClient, upstreamCache, logger)
	warmupJob := jobs.NewWarmTopProductsJob(marketplaceService, logger)

	ordersRepo := orders.NewRepository(dbpool)
	qrGenerator := orders.NewQRGenerator(cfg.MediaDir, logger)
	ordersService := orders.NewService(ordersRepo, qrGenerator, nil, logger)
	qrJob := jobs.NewGenerateQRJob(ordersService, logger)

	shopStore := shop.NewStore(redisClient, cfg.SessionTTL)
	shopRepo := shop.NewRepository(dbpool)
	flushJob := jobs.NewFlushSessionsJob(shopStore, shopRepo, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskWarmTopProducts, Handler: warmupJob.Handle},
			{Type: jobs.TaskGenerateQR, Handler: qrJob.Handle},
			{Type: jobs.TaskFlushSessions, Handler: flushJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: jobs.NewWarmTopProductsTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/10 * * * *", Task: jobs.NewFlushSessionsTask(), Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
