package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

type Config struct {
	ServiceName  string
	LogLevel     slog.Level
	LogFormat    string
	MetricsAddr  string
	SigningKey   string
	OTelEndpoint string
}

// Load reads the BANK_* environment variables. Unset or blank values fall
// back to defaults; an empty metrics address, signing key or collector
// endpoint disables that feature.
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:  GetenvOrDefault("BANK_SERVICE_NAME", "bank_account"),
		LogFormat:    strings.ToLower(GetenvOrDefault("BANK_LOG_FORMAT", FormatJSON)),
		MetricsAddr:  GetenvOrDefault("BANK_METRICS_ADDR", ""),
		SigningKey:   GetenvOrDefault("BANK_SIGNING_KEY", ""),
		OTelEndpoint: GetenvOrDefault("BANK_OTEL_ENDPOINT", ""),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(GetenvOrDefault("BANK_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("BANK_LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != FormatJSON && cfg.LogFormat != FormatText {
		return nil, fmt.Errorf("BANK_LOG_FORMAT: unsupported format %q", cfg.LogFormat)
	}

	return cfg, nil
}

func GetenvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}
