package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultArchiveBaseURL is the Open-Meteo historical weather endpoint.
const DefaultArchiveBaseURL = "https://archive-api.open-meteo.com/v1/archive"

type AppConfig struct {
	Port      string
	LogLevel  string
	LogFormat string

	// CatalogDir holds wines.csv, wines.csv.gz, wines.jsonl or wines.parquet.
	CatalogDir string

	ArchiveBaseURL string
	ArchiveTimeout time.Duration

	// GeocoderAPIKey enables region name -> coordinates lookups (Google Geocoding).
	GeocoderAPIKey string

	// Daily series cache. CacheMaxAge of 0 disables caching.
	CacheMaxAge        time.Duration
	CacheMaxEntries    int
	CachePruneInterval time.Duration

	ShutdownTimeout time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:           getenvDefault("PORT", "8080"),
		LogLevel:       getenvDefault("LOG_LEVEL", "info"),
		LogFormat:      getenvDefault("LOG_FORMAT", "json"),
		CatalogDir:     getenvDefault("CATALOG_DIR", "data/xwines"),
		ArchiveBaseURL: getenvDefault("ARCHIVE_BASE_URL", DefaultArchiveBaseURL),
		GeocoderAPIKey: os.Getenv("GEOCODER_API_KEY"),
		// Roughly one cached window per distinct region/season pair.
		CacheMaxEntries: getenvInt("CACHE_MAX_ENTRIES", 256),
	}

	var err error
	if cfg.ArchiveTimeout, err = getenvDuration("ARCHIVE_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.ArchiveTimeout <= 0 {
		return nil, fmt.Errorf("invalid ARCHIVE_TIMEOUT: must be positive")
	}
	if cfg.CacheMaxAge, err = getenvDuration("CACHE_MAX_AGE", "0"); err != nil {
		return nil, err
	}
	if cfg.CachePruneInterval, err = getenvDuration("CACHE_PRUNE_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CacheEnabled reports whether fetched daily series should be cached.
func (c *AppConfig) CacheEnabled() bool {
	return c.CacheMaxAge > 0
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
