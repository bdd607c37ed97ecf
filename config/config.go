package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"CATALOG_BASE_URL"` specify the environment variable
// name; `default:""` provides a value when the variable is unset and
// `required:"true"` makes it mandatory. The base endpoint is the only piece
// of ambient state this module reads: everything downstream receives it by
// injection.
type Config struct {
	BaseURL     string        `envconfig:"CATALOG_BASE_URL" required:"true" validate:"url"`
	StoreID     string        `envconfig:"CATALOG_STORE_ID" default:""`
	SearchLimit int           `envconfig:"CATALOG_SEARCH_LIMIT" default:"50" validate:"gt=0"`
	HistoryDays int           `envconfig:"CATALOG_HISTORY_DAYS" default:"60" validate:"gt=0"`
	HTTPTimeout time.Duration `envconfig:"CATALOG_HTTP_TIMEOUT" default:"10s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; its absence is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewLogger builds a production zap logger at the configured level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}
