// Package config builds the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/imagesearch/internal/apperr"
	"github.com/lehigh-university-libraries/imagesearch/internal/logging"
)

const (
	EnvAPIKey      = "SERP_API_KEY"
	EnvEndpoint    = "SERP_API_ENDPOINT"
	EnvRateLimit   = "SERP_RATE_LIMIT"
	EnvHTTPTimeout = "IMAGESEARCH_HTTP_TIMEOUT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
	EnvLogFile     = "LOG_FILE"

	EnvLogFileMaxSizeMB  = "LOG_FILE_MAX_SIZE_MB"
	EnvLogFileMaxFiles   = "LOG_FILE_MAX_FILES"
	EnvLogFileMaxAgeDays = "LOG_FILE_MAX_AGE_DAYS"

	DefaultEndpoint = "https://serpapi.com/search"
)

// Config is built once at startup and handed to the components that need it.
type Config struct {
	APIKey   string
	Endpoint string
	// RateLimit is the maximum number of provider searches per second. Zero
	// disables limiting.
	RateLimit float64
	// HTTPTimeout bounds every outbound request. Zero means no timeout.
	HTTPTimeout time.Duration
	UserAgent   string
	Logging     logging.Config
}

// Load reads the environment. It does not require the API key; callers that
// talk to the provider call RequireAPIKey.
func Load() (*Config, error) {
	cfg := &Config{
		APIKey:   strings.TrimSpace(os.Getenv(EnvAPIKey)),
		Endpoint: getenv(EnvEndpoint, DefaultEndpoint),
		Logging: logging.Config{
			Level:    strings.ToLower(getenv(EnvLogLevel, "info")),
			Format:   strings.ToLower(getenv(EnvLogFormat, "text")),
			FilePath: os.Getenv(EnvLogFile),
		},
	}

	if v := os.Getenv(EnvRateLimit); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil || limit < 0 {
			return nil, apperr.Newf(apperr.KindConfig, "load config", "%s must be a non-negative number, got %q", EnvRateLimit, v)
		}
		cfg.RateLimit = limit
	}

	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil || timeout < 0 {
			return nil, apperr.Newf(apperr.KindConfig, "load config", "%s must be a non-negative duration, got %q", EnvHTTPTimeout, v)
		}
		cfg.HTTPTimeout = timeout
	}

	rotation := []struct {
		key string
		dst *int
	}{
		{EnvLogFileMaxSizeMB, &cfg.Logging.FileMaxSizeMB},
		{EnvLogFileMaxFiles, &cfg.Logging.FileMaxFiles},
		{EnvLogFileMaxAgeDays, &cfg.Logging.FileMaxAgeDays},
	}
	for _, r := range rotation {
		v := strings.TrimSpace(os.Getenv(r.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, apperr.Newf(apperr.KindConfig, "load config", "%s must be a non-negative integer, got %q", r.key, v)
		}
		*r.dst = n
	}

	if !logging.ValidLevel(cfg.Logging.Level) {
		return nil, apperr.Newf(apperr.KindConfig, "load config", "unknown %s %q", EnvLogLevel, cfg.Logging.Level)
	}
	if !logging.ValidFormat(cfg.Logging.Format) {
		return nil, apperr.Newf(apperr.KindConfig, "load config", "unknown %s %q", EnvLogFormat, cfg.Logging.Format)
	}

	return cfg, nil
}

// RequireAPIKey fails with a ConfigError when no provider key is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return apperr.New(apperr.KindConfig, "load config", fmt.Errorf("missing %s in environment variables", EnvAPIKey))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
