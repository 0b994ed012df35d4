package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Port     int    `envconfig:"PORT" default:"8080"`

	OrderCacheKey string        `envconfig:"ORDER_CACHE_KEY" default:"orders:v1"`
	OrderCacheMax int           `envconfig:"ORDER_CACHE_MAX" default:"10"`
	OrderCacheTTL time.Duration `envconfig:"ORDER_CACHE_TTL" default:"168h"`

	// StorageDSN selects the Postgres cache store; empty keeps it in a file.
	StorageDSN        string `envconfig:"STORAGE_DSN" default:""`
	// StorageDir holds the file cache store; empty means the user cache dir.
	StorageDir        string `envconfig:"STORAGE_DIR" default:""`
	StorageQuotaBytes int    `envconfig:"STORAGE_QUOTA_BYTES" default:"5242880"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads the environment, after merging in .env files when present.
func Load(envFiles ...string) (Config, error) {
	var cfg Config

	// a missing .env file is fine, variables may come from the environment
	_ = godotenv.Load(envFiles...)

	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("envconfig.Process: %w", err)
	}

	if cfg.OrderCacheMax <= 0 {
		return cfg, fmt.Errorf("ORDER_CACHE_MAX must be positive, got %d", cfg.OrderCacheMax)
	}

	if cfg.OrderCacheTTL <= 0 {
		return cfg, fmt.Errorf("ORDER_CACHE_TTL must be positive, got %s", cfg.OrderCacheTTL)
	}

	return cfg, nil
}
