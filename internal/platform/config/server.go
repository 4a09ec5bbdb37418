package config

import (
	"fmt"
	"os"
	"time"
)

type FareBackend string

const (
	FareBackendHTTP     FareBackend = "http"
	FareBackendPostgres FareBackend = "postgres"
	FareBackendMemory   FareBackend = "memory"
)

type FareCache string

const (
	FareCacheNone  FareCache = "none"
	FareCacheRedis FareCache = "redis"
)

// ServerConfig holds process-level settings for cmd/api.
type ServerConfig struct {
	Port    string
	LogMode string

	FareBackend FareBackend
	FareCache   FareCache

	// Location decides where "today" starts when validating travel dates.
	Location *time.Location

	DatabaseURL string

	// FareTablePath optionally seeds the memory fare book from a JSON file.
	FareTablePath string
}

func LoadServerConfigFromEnv() (ServerConfig, error) {
	cfg := ServerConfig{
		Port:        getenv("PORT", "8080"),
		LogMode:     getenv("LOG_MODE", "production"),
		FareBackend: FareBackend(getenv("FARE_BACKEND", string(FareBackendHTTP))),
		FareCache:   FareCache(getenv("FARE_CACHE", string(FareCacheNone))),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		FareTablePath: os.Getenv("FARE_TABLE_PATH"),
	}

	switch cfg.FareBackend {
	case FareBackendHTTP, FareBackendMemory:
	case FareBackendPostgres:
		if cfg.DatabaseURL == "" {
			return ServerConfig{}, fmt.Errorf("DATABASE_URL is required when FARE_BACKEND=postgres")
		}
	default:
		return ServerConfig{}, fmt.Errorf("FARE_BACKEND must be one of http, postgres, memory; got %q", cfg.FareBackend)
	}

	switch cfg.FareCache {
	case FareCacheNone, FareCacheRedis:
	default:
		return ServerConfig{}, fmt.Errorf("FARE_CACHE must be one of none, redis; got %q", cfg.FareCache)
	}

	loc, err := time.LoadLocation(getenv("TIMEZONE", "UTC"))
	if err != nil {
		return ServerConfig{}, fmt.Errorf("TIMEZONE must be an IANA zone name (e.g. Europe/Paris): %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
