package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime configuration for the SDMX MCP server.
// Every field can be overridden through environment variables.
type Config struct {
	BaseURL         string        `envconfig:"SDMX_BASE_URL"`
	RateInterval    time.Duration `envconfig:"SDMX_RATE_INTERVAL"`
	RequestTimeout  time.Duration `envconfig:"SDMX_REQUEST_TIMEOUT"`
	MaxRetries      int           `envconfig:"SDMX_MAX_RETRIES"`
	RetryDelay      time.Duration `envconfig:"SDMX_RETRY_DELAY"`
	DefaultLimit    int           `envconfig:"SDMX_DEFAULT_LIMIT"`
	MaxLimit        int           `envconfig:"SDMX_MAX_LIMIT"`
	CatalogPath     string        `envconfig:"SDMX_CATALOG_PATH"`
	CachePath       string        `envconfig:"SDMX_CACHE_PATH"`
	CacheTTL        time.Duration `envconfig:"SDMX_CACHE_TTL"`
	CachePurgeEvery time.Duration `envconfig:"SDMX_CACHE_PURGE_EVERY"`
}

// Get returns the default config with any modifications through environment
// variables.
func Get() (*Config, error) {
	cfg := &Config{
		BaseURL:         "https://sdmx.oecd.org/public/rest",
		RateInterval:    1500 * time.Millisecond,
		RequestTimeout:  30 * time.Second,
		MaxRetries:      3,
		RetryDelay:      1 * time.Second,
		DefaultLimit:    100,
		MaxLimit:        1000,
		CacheTTL:        1 * time.Hour,
		CachePurgeEvery: 10 * time.Minute,
	}

	return cfg, envconfig.Process("", cfg)
}
