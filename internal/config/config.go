package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the process configuration.
type Config struct {
	HTTPAddr  string `env:"GACHA_HTTP_ADDR"  envDefault:":8080"`
	GRPCAddr  string `env:"GACHA_GRPC_ADDR"  envDefault:":9090"`
	ConfigDir string `env:"GACHA_CONFIG_DIR" envDefault:"configs"`
	Game      string `env:"GACHA_GAME"       envDefault:"stickers"`
	Event     string `env:"GACHA_EVENT"`

	SQLitePath      string        `env:"GACHA_SQLITE_PATH"       envDefault:"data/sessions.db"`
	SessionTTL      time.Duration `env:"GACHA_SESSION_TTL"       envDefault:"30m"`
	SessionCacheMax int           `env:"GACHA_SESSION_CACHE_MAX" envDefault:"10000"`
	StartingBalance int           `env:"GACHA_STARTING_BALANCE"  envDefault:"1600"`
	WatchInterval   time.Duration `env:"GACHA_WATCH_INTERVAL"    envDefault:"2s"`

	LogLevel       string `env:"LOG_LEVEL"       envDefault:"INFO"`
	LogFormat      string `env:"LOG_FORMAT"      envDefault:"json"`
	Environment    string `env:"ENVIRONMENT"     envDefault:"dev"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
}

// Load reads an optional .env file, then parses the environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Game == "":
		return errors.New("GACHA_GAME must not be empty")
	case c.SessionTTL <= 0:
		return fmt.Errorf("GACHA_SESSION_TTL must be positive, got %s", c.SessionTTL)
	case c.SessionCacheMax < 1:
		return fmt.Errorf("GACHA_SESSION_CACHE_MAX must be >= 1, got %d", c.SessionCacheMax)
	case c.StartingBalance < 0:
		return fmt.Errorf("GACHA_STARTING_BALANCE must be >= 0, got %d", c.StartingBalance)
	}
	return nil
}
