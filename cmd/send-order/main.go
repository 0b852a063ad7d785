package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"printcalc/internal/config"
	"printcalc/internal/metrics"
	"printcalc/internal/relay"
	"printcalc/internal/server"
	"printcalc/pkg/logger"
	"printcalc/pkg/redis"
)

// Order relay: receives the calculator's order payload, mails it to the
// shop and posts a copy to the Telegram channel.

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
		zapLogger.Fatal("Relay stopped with error", zap.Error(err))
	}
	zapLogger.Info("Relay shutdown gracefully")
}

func run(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	m := metrics.New()
	opts := relay.Options{
		Limit:    cfg.Order.RateLimit,
		Window:   cfg.Order.RateLimitWindow,
		Recorder: m,
		Logger:   zapLogger,
	}

	if mailer := relay.NewSMTPMailer(cfg.SMTP); mailer != nil {
		opts.Mailer = mailer
	} else {
		zapLogger.Warn("SMTP credentials are not set, orders will be refused")
	}

	if cfg.Telegram.Enabled() {
		botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("failed to create bot API: %w", err)
		}
		zapLogger.Info("Bot authorized",
			zap.String("username", botAPI.Self.UserName),
			zap.Int64("channel_id", cfg.Telegram.ChannelID))
		opts.Notifier = relay.NewTelegramNotifier(botAPI, cfg.Telegram.ChannelID, zapLogger)
	}

	if cfg.Redis.Enabled() {
		redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer redisClient.Close()
		opts.Limiter = redisClient
	}

	r := chi.NewRouter()
	if cfg.HTTP.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		server.RequestID(),
		server.Logging(zapLogger),
		server.Recoverer(zapLogger),
	)
	h := relay.NewHandler(opts)
	r.Handle("/", h)
	r.Handle("/send-order", h)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("Relay listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
