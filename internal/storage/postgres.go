package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"printcalc/internal/config"
	"printcalc/internal/pricing"
)

// Postgres reads the material catalog.
type Postgres struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type materialRow struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	UnitPrice   float64 `db:"unit_price"`
	LeadTime    string  `db:"lead_time"`
	Description string  `db:"description"`
}

func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Postgres, error) {
	const operation = "storage.NewPostgres"

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = cfg.ConnectTimeout
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &Postgres{db: db, logger: logger}, nil
}

func (s *Postgres) DB() *sql.DB {
	return s.db.DB
}

// Materials returns the active materials in display order.
func (s *Postgres) Materials(ctx context.Context) ([]pricing.Material, error) {
	const query = `
        SELECT id, name, unit_price::float8 AS unit_price, lead_time, description
        FROM materials
        WHERE active = TRUE
        ORDER BY position, id
    `

	var rows []materialRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get materials: %w", err)
	}

	materials := make([]pricing.Material, 0, len(rows))
	for _, r := range rows {
		materials = append(materials, pricing.Material(r))
	}
	return materials, nil
}

func (s *Postgres) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
