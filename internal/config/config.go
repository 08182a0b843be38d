package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Env            string   `env:"APP_ENV" envDefault:"dev"`
	ServerPort     int      `env:"PORT" envDefault:"4000"`
	DatabasePath   string   `env:"DATABASE_PATH" envDefault:"./authmail.db"`
	JWTSecret      string   `env:"JWT_SECRET"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp-relay.brevo.com"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
	SenderEmail  string `env:"SENDER_EMAIL"`
}

// Load reads configuration from environment variables, after loading a
// local .env file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &cfg, nil
}

// IsProduction reports whether production hardening applies (secure
// cookies, cross-site cookie mode).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
