package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"printcalc/internal/pricing"
	"printcalc/pkg/redis"
)

const catalogCacheKey = "catalog:v1"

type MaterialSource interface {
	Materials(ctx context.Context) ([]pricing.Material, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

var _ Cache = (*redis.Client)(nil)

// CatalogLoader builds the startup catalog: cache first, then the material
// source, then the built-in price list when no source is configured.
type CatalogLoader struct {
	source MaterialSource
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogLoader accepts nil source and nil cache.
func NewCatalogLoader(source MaterialSource, cache Cache, ttl time.Duration, logger *zap.Logger) *CatalogLoader {
	return &CatalogLoader{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (l *CatalogLoader) Load(ctx context.Context, defaultID string) (*pricing.Catalog, error) {
	const operation = "storage.CatalogLoader.Load"

	if l.source == nil {
		l.logger.Info("Using built-in material catalog")
		return pricing.NewCatalog(pricing.DefaultMaterials(), defaultID)
	}

	if materials, ok := l.fromCache(ctx); ok {
		catalog, err := pricing.NewCatalog(materials, defaultID)
		if err == nil {
			l.logger.Info("Material catalog loaded from cache", zap.Int("materials", catalog.Len()))
			return catalog, nil
		}
		l.logger.Warn("Cached catalog is invalid, reloading", zap.Error(err))
		l.dropCache(ctx)
	}

	materials, err := l.source.Materials(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	catalog, err := pricing.NewCatalog(materials, defaultID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	l.toCache(ctx, materials)

	l.logger.Info("Material catalog loaded from database", zap.Int("materials", catalog.Len()))
	return catalog, nil
}

func (l *CatalogLoader) fromCache(ctx context.Context) ([]pricing.Material, bool) {
	if l.cache == nil {
		return nil, false
	}

	cached, err := l.cache.Get(ctx, catalogCacheKey)
	if err != nil {
		if !errors.Is(err, redis.ErrNotFound) {
			l.logger.Warn("Failed to read catalog cache", zap.Error(err))
		}
		return nil, false
	}

	var materials []pricing.Material
	if err := json.Unmarshal(cached, &materials); err != nil {
		l.logger.Warn("Failed to decode catalog cache", zap.Error(err))
		l.dropCache(ctx)
		return nil, false
	}
	return materials, true
}

func (l *CatalogLoader) toCache(ctx context.Context, materials []pricing.Material) {
	if l.cache == nil {
		return
	}

	data, err := json.Marshal(materials)
	if err != nil {
		return
	}
	if err := l.cache.Set(ctx, catalogCacheKey, data, l.ttl); err != nil {
		l.logger.Warn("Failed to cache catalog", zap.Error(err))
	}
}

func (l *CatalogLoader) dropCache(ctx context.Context) {
	if err := l.cache.Del(ctx, catalogCacheKey); err != nil {
		l.logger.Warn("Failed to drop catalog cache", zap.Error(err))
	}
}
