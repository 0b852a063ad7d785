package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printcalc/internal/pricing"
	"printcalc/pkg/redis"
)

type fakeSource struct {
	materials []pricing.Material
	err       error
	calls     int
}

func (f *fakeSource) Materials(ctx context.Context) ([]pricing.Material, error) {
	f.calls++
	return f.materials, f.err
}

type fakeCache struct {
	data    map[string][]byte
	ttl     time.Duration
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, redis.ErrNotFound
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	f.data[key] = data
	f.ttl = ttl
	return nil
}

func (f *fakeCache) Del(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.data, key)
	return nil
}

func TestCatalogLoader_BuiltIn(t *testing.T) {
	l := NewCatalogLoader(nil, nil, time.Hour, zap.NewNop())

	c, err := l.Load(context.Background(), "korea")
	require.NoError(t, err)
	assert.Equal(t, 6, c.Len())
}

func TestCatalogLoader_SourceThenCache(t *testing.T) {
	src := &fakeSource{materials: []pricing.Material{
		{ID: "korea", Name: "Корея", UnitPrice: 250, LeadTime: "2-3 дня"},
		{ID: "mesh", Name: "Сетка", UnitPrice: 360},
	}}
	cache := newFakeCache()
	l := NewCatalogLoader(src, cache, time.Hour, zap.NewNop())

	c, err := l.Load(context.Background(), "korea")
	require.NoError(t, err)
	assert.Equal(t, 250.0, c.Default().UnitPrice)
	assert.Equal(t, 1, src.calls)
	assert.Contains(t, cache.data, catalogCacheKey)
	assert.Equal(t, time.Hour, cache.ttl)

	c, err = l.Load(context.Background(), "mesh")
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, "mesh", c.DefaultID())
}

func TestCatalogLoader_InvalidCacheFallsBackToSource(t *testing.T) {
	src := &fakeSource{materials: pricing.DefaultMaterials()}
	cache := newFakeCache()
	stale, _ := json.Marshal([]pricing.Material{{ID: "old", UnitPrice: 1}})
	cache.data[catalogCacheKey] = stale

	l := NewCatalogLoader(src, cache, time.Hour, zap.NewNop())
	c, err := l.Load(context.Background(), "korea")
	require.NoError(t, err)
	assert.Equal(t, 6, c.Len())
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, []string{catalogCacheKey}, cache.deleted)
}

func TestCatalogLoader_CorruptCacheIsDropped(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	cache := newFakeCache()
	cache.data[catalogCacheKey] = []byte("{not json")

	l := NewCatalogLoader(src, cache, time.Hour, zap.NewNop())
	_, err := l.Load(context.Background(), "korea")

	assert.Error(t, err)
	assert.Equal(t, []string{catalogCacheKey}, cache.deleted)
	assert.NotContains(t, cache.data, catalogCacheKey)
}

func TestCatalogLoader_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	l := NewCatalogLoader(src, nil, time.Hour, zap.NewNop())

	_, err := l.Load(context.Background(), "korea")
	assert.Error(t, err)
}

func TestCatalogLoader_EmptySource(t *testing.T) {
	l := NewCatalogLoader(&fakeSource{}, nil, time.Hour, zap.NewNop())

	_, err := l.Load(context.Background(), "korea")
	assert.ErrorIs(t, err, pricing.ErrEmptyCatalog)
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)
	assert.Contains(t, names, "00001_create_materials.sql")
}
