package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.HTTP.TrustProxy)
	assert.Equal(t, 0.2, cfg.Pricing.GrommetStep)
	assert.Equal(t, 20.0, cfg.Pricing.GrommetUnitPrice)
	assert.Equal(t, "korea", cfg.Pricing.DefaultMaterial)
	assert.Equal(t, 30*time.Second, cfg.Order.RequestTimeout)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, "smtp.yandex.ru", cfg.SMTP.Host)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoad_FromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"PRICING_GROMMET_UNIT_PRICE=25\n"+
			"ORDER_ENDPOINT_URL=https://functions.example.com/send-order\n"+
			"REDIS_ADDR=localhost:6379\n",
	), 0o600))
	t.Setenv("ENV_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.Pricing.GrommetUnitPrice)
	assert.Equal(t, "https://functions.example.com/send-order", cfg.Order.EndpointURL)
	assert.True(t, cfg.Redis.Enabled())

	for _, key := range []string{"PRICING_GROMMET_UNIT_PRICE", "ORDER_ENDPOINT_URL", "REDIS_ADDR"} {
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_InvalidPricing(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("PRICING_GROMMET_STEP_M", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DatabaseRequiresCredentials(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DB_HOST", "localhost")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_USER", "printcalc")
	t.Setenv("DB_NAME", "printcalc")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.Database.DSN(), "host=localhost port=5432 user=printcalc")
}
