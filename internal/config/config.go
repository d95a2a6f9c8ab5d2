package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ctoon/ctoon-api/internal/crypto"
)

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration
	BcryptCost  int
}

func Load() Config {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/ctoon?parseTime=true"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpiry:   24 * time.Hour,
		BcryptCost:  getEnvInt("BCRYPT_COST", crypto.DefaultBcryptCost),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			slog.Error("JWT_SECRET must be set in production environment")
			os.Exit(1)
		}

		secret, err := crypto.GenerateSecret()
		if err != nil {
			slog.Error("generating ephemeral signing secret failed", "error", err)
			os.Exit(1)
		}
		cfg.JWTSecret = secret
		slog.Warn("JWT_SECRET not set, generated ephemeral signing key; tokens will not survive restarts")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring non-numeric environment value", "key", key, "value", v)
		return fallback
	}
	return n
}
