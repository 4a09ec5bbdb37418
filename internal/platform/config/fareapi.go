package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// FareAPIConfig configures the remote quoting service that supplies base fares.
type FareAPIConfig struct {
	BaseURL string

	HTTPTimeout time.Duration
}

func LoadFareAPIConfigFromEnv() (FareAPIConfig, error) {
	base := strings.TrimRight(strings.TrimSpace(os.Getenv("FARE_API_BASE_URL")), "/")
	if base == "" {
		return FareAPIConfig{}, fmt.Errorf("missing required env var: FARE_API_BASE_URL")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return FareAPIConfig{}, fmt.Errorf("FARE_API_BASE_URL must be an absolute URL, got %q", base)
	}

	cfg := FareAPIConfig{
		BaseURL:     base,
		HTTPTimeout: 5 * time.Second,
	}

	if v := os.Getenv("FARE_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return FareAPIConfig{}, fmt.Errorf("FARE_API_TIMEOUT must be a duration (e.g. 5s): %w", err)
		}
		cfg.HTTPTimeout = d
	}

	return cfg, nil
}
