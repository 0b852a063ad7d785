package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"printcalc/internal/config"
	"printcalc/internal/metrics"
	"printcalc/internal/pricing"
	"printcalc/internal/server"
	"printcalc/internal/storage"
	"printcalc/pkg/api"
	"printcalc/pkg/logger"
	"printcalc/pkg/redis"
)

// ENTRY POINT

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Fatal("Calculator stopped with error", zap.Error(err))
	}
	zapLogger.Info("Calculator shutdown gracefully")
}

func run(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	// Redis: catalog cache and order rate limit
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx); err != nil {
			zapLogger.Warn("Redis is unreachable, continuing without it", zap.Error(err))
		}
	}

	// PostgreSQL: material catalog
	var source storage.MaterialSource
	if cfg.Database.Enabled() {
		pg, err := storage.NewPostgres(ctx, cfg.Database, zapLogger)
		if err != nil {
			return fmt.Errorf("failed to init PostgreSQL storage: %w", err)
		}
		defer pg.Close()

		if cfg.Database.AutoMigrate {
			if err := storage.RunMigrations(ctx, pg.DB(), zapLogger); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
		}
		source = pg
	}

	var cache storage.Cache
	var limiter server.RateLimiter
	if redisClient != nil {
		cache = redisClient
		limiter = redisClient
	}

	catalog, err := storage.NewCatalogLoader(source, cache, cfg.Redis.TTL, zapLogger).
		Load(ctx, cfg.Pricing.DefaultMaterial)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	engine, err := pricing.NewEngine(catalog, cfg.PricingEngineConfig())
	if err != nil {
		return err
	}

	var submitter server.OrderSubmitter
	if cfg.Order.EndpointURL != "" {
		submitter = api.NewClient(cfg.Order.EndpointURL, cfg.Order.RequestTimeout, zapLogger)
	} else {
		zapLogger.Warn("ORDER_ENDPOINT_URL is not set, order submission is disabled")
	}

	srv := server.New(cfg, engine, submitter, limiter, metrics.New(), zapLogger)
	return srv.Run(ctx)
}
