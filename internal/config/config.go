package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"printcalc/internal/pricing"
)

type Config struct {
	Log      LogConfig      `envPrefix:"LOG_"`
	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Pricing  PricingConfig  `envPrefix:"PRICING_"`
	Order    OrderConfig    `envPrefix:"ORDER_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	SMTP     SMTPConfig     `envPrefix:"SMTP_"`
	Telegram TelegramConfig `envPrefix:"TELEGRAM_"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	AllowedOrigin   string        `env:"ALLOWED_ORIGIN" envDefault:"*"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

type PricingConfig struct {
	GrommetStep      float64 `env:"GROMMET_STEP_M" envDefault:"0.2"`
	GrommetUnitPrice float64 `env:"GROMMET_UNIT_PRICE" envDefault:"20"`
	DefaultMaterial  string  `env:"DEFAULT_MATERIAL" envDefault:"korea"`
}

type OrderConfig struct {
	EndpointURL     string        `env:"ENDPOINT_URL"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	DeepLinkBase    string        `env:"DEEP_LINK_BASE" envDefault:"https://t.me/printcalc"`
	RateLimit       int64         `env:"RATE_LIMIT" envDefault:"5"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"10m"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"2m"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
}

// Enabled reports whether the catalog should be read from Postgres.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"24h"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type SMTPConfig struct {
	Host     string `env:"HOST" envDefault:"smtp.yandex.ru"`
	Port     int    `env:"PORT" envDefault:"465"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM_EMAIL" envDefault:"noreply@printcalc.ru"`
	To       string `env:"TO_EMAIL" envDefault:"printcalc@mail.ru"`
}

type TelegramConfig struct {
	Token     string `env:"TOKEN"`
	ChannelID int64  `env:"CHANNEL_ID"`
}

func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != 0
}

// Load reads an optional .env file (path from ENV_FILE, default ".env") and
// then the process environment.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := c.PricingEngineConfig().Validate(); err != nil {
		return fmt.Errorf("invalid pricing config: %w", err)
	}
	if c.Pricing.DefaultMaterial == "" {
		return errors.New("PRICING_DEFAULT_MATERIAL must not be empty")
	}
	if c.Order.RateLimit < 0 {
		return fmt.Errorf("ORDER_RATE_LIMIT must not be negative, got %d", c.Order.RateLimit)
	}
	if c.Database.Enabled() && (c.Database.User == "" || c.Database.Name == "") {
		return errors.New("DB_USER and DB_NAME are required when DB_HOST is set")
	}
	return nil
}

func (c *Config) PricingEngineConfig() pricing.Config {
	return pricing.Config{
		GrommetStep:      c.Pricing.GrommetStep,
		GrommetUnitPrice: c.Pricing.GrommetUnitPrice,
	}
}
