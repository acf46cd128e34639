package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

type Config struct {
	Port        string `mapstructure:"APP_PORT"`
	Environment string `mapstructure:"APP_ENV"`

	Store     string `mapstructure:"STORE_BACKEND"`
	StateDir  string `mapstructure:"STATE_DIR"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	RedisPass string `mapstructure:"REDIS_PASSWORD"`
	RedisDB   int    `mapstructure:"REDIS_DB"`
	RedisKey  string `mapstructure:"REDIS_KEY_PREFIX"`

	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`

	// Requests per second allowed on the reservation endpoint.
	ReserveRateLimit float64 `mapstructure:"RESERVE_RATE_LIMIT"`
	ReserveBurst     int     `mapstructure:"RESERVE_BURST"`

	OTelEnabled     bool   `mapstructure:"OTEL_ENABLED"`
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	OTelEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

var defaults = map[string]any{
	"APP_PORT":                    "8080",
	"APP_ENV":                     "development",
	"STORE_BACKEND":               StoreMemory,
	"STATE_DIR":                   "./data",
	"REDIS_ADDR":                  "localhost:6379",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"REDIS_KEY_PREFIX":            "",
	"SWEEP_INTERVAL":              "1s",
	"RESERVE_RATE_LIMIT":          5.0,
	"RESERVE_BURST":               10,
	"OTEL_ENABLED":                true,
	"OTEL_SERVICE_NAME":           "parking-reservations",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "http://localhost:4318",
}

// Load reads configuration from an optional .env file, an optional
// config.yaml and the environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Second
	}
	return &cfg, nil
}
