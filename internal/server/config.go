package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Addr           string        `env:"MASONRY_ADDR" envDefault:":8080"`
	RedisAddr      string        `env:"MASONRY_REDIS_ADDR"`
	RedisPassword  string        `env:"MASONRY_REDIS_PASSWORD"`
	RedisDB        int           `env:"MASONRY_REDIS_DB" envDefault:"0"`
	KeyPrefix      string        `env:"MASONRY_KEY_PREFIX" envDefault:"masonry:"`
	SessionTTL     time.Duration `env:"MASONRY_SESSION_TTL" envDefault:"24h"`
	RequestTimeout time.Duration `env:"MASONRY_REQUEST_TIMEOUT" envDefault:"30s"`
	MaxBodyBytes   int64         `env:"MASONRY_MAX_BODY_BYTES" envDefault:"1048576"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
