package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// RedisConfig configures the base fare cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	TTL time.Duration
}

func LoadRedisConfigFromEnv() (RedisConfig, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{}, fmt.Errorf("missing required env var: REDIS_ADDR")
	}

	cfg := RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		TTL:      10 * time.Minute,
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return RedisConfig{}, fmt.Errorf("REDIS_DB must be a non-negative integer, got %q", v)
		}
		cfg.DB = n
	}
	if v := os.Getenv("FARE_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return RedisConfig{}, fmt.Errorf("FARE_CACHE_TTL must be a duration (e.g. 10m): %w", err)
		}
		if d <= 0 {
			return RedisConfig{}, fmt.Errorf("FARE_CACHE_TTL must be positive, got %s", d)
		}
		cfg.TTL = d
	}

	return cfg, nil
}
