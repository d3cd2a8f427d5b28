package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/mailbox.db"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	TokenTTL  time.Duration `env:"JWT_EXPIRES_IN" envDefault:"24h"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`

	UploadPath    string `env:"UPLOAD_PATH" envDefault:"./data/uploads"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "could not parse configuration")
	}
	return cfg, nil
}

func (c *Config) Production() bool {
	return c.Environment == "production"
}
