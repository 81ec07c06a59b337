package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string
	TokenTTL  time.Duration

	OTPCodeTTL   time.Duration
	OTPRateLimit time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
	}

	var err error
	cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "72h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cfg.OTPCodeTTL, err = time.ParseDuration(getEnv("OTP_CODE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_CODE_TTL: %w", err)
	}
	cfg.OTPRateLimit, err = time.ParseDuration(getEnv("OTP_RATE_LIMIT", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_RATE_LIMIT: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
