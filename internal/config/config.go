package config

import (
	"os"
	"strconv"
	"time"

	infraconfig "uow-coordinator/internal/infrastructure/config"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port           string
	Storage        string
	RequestTimeout time.Duration
	// Postgres
	DatabaseURL string
	// Redis (storage and idempotency)
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	IdempotencyBackend string
	IdempotencyTTL     time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnv("PORT", infraconfig.DefaultHTTPPort),
		Storage:            getEnv("STORAGE", "pg"),
		RequestTimeout:     time.Duration(atoiDef(getEnv("REQUEST_TIMEOUT_MS", "3000"), 3000)) * time.Millisecond,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
		IdempotencyBackend: getEnv("IDEMPOTENCY_BACKEND", "redis"),
		IdempotencyTTL:     time.Duration(atoiDef(getEnv("IDEMPOTENCY_TTL_MS", "86400000"), 86400000)) * time.Millisecond,
	}
}
