package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"printcalc/internal/config"
	"printcalc/internal/metrics"
	"printcalc/internal/pricing"
)

// Server is the calculator HTTP API.
type Server struct {
	cfg       *config.Config
	engine    *pricing.Engine
	submitter OrderSubmitter
	limiter   RateLimiter
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time

	httpServer *http.Server
}

// New wires the API. submitter and limiter may be nil: orders then answer
// 503 and go unthrottled.
func New(
	cfg *config.Config,
	engine *pricing.Engine,
	submitter OrderSubmitter,
	limiter RateLimiter,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    engine,
		submitter: submitter,
		limiter:   limiter,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	if s.cfg.HTTP.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		RequestID(),
		Logging(s.logger),
		Recoverer(s.logger),
		CORS(s.cfg.HTTP.AllowedOrigin),
	)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/materials", s.handleMaterials)
		r.Get("/materials/export", s.handleMaterialsExport)
		r.Post("/quote", s.handleQuote)
		r.Post("/quote/export", s.handleQuoteExport)
		r.Post("/orders", s.handleOrder)
		r.Post("/orders/link", s.handleOrderLink)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server.Run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	s.logger.Info("HTTP server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server.Run: shutdown: %w", err)
	}
	return nil
}
