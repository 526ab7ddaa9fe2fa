package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is built once at startup and passed into constructors. Nothing else
// in the codebase reads the environment.
type Config struct {
	Port        string
	DatabaseURL string

	// Token signing. All three are required, the process refuses to start
	// without them.
	SecretKey      string
	Algorithm      string // HMAC family, e.g. HS256
	AccessTokenTTL time.Duration

	// Alert delivery. Optional: with no Redis address the dispatcher is
	// disabled and crime creation works as usual.
	RedisAddr     string
	RedisPassword string
	WebhookURL    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          os.Getenv("PORT"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		Algorithm:     os.Getenv("ALGORITHM"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DatabaseURL == "" {
		// Fallback for local dev if not set
		cfg.DatabaseURL = "host=localhost user=postgres password=postgres dbname=crimewatch port=5432 sslmode=disable"
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is not set")
	}
	if cfg.Algorithm == "" {
		return nil, fmt.Errorf("ALGORITHM is not set")
	}

	minutesStr := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES")
	if minutesStr == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES is not set")
	}
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer, got %q", minutesStr)
	}
	cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute

	return cfg, nil
}
