package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings of the scanner CLI.
type Config struct {
	// ServerURL is the API root of the check-in authority.
	ServerURL    string
	DatabasePath string

	Gate     string
	Operator string
	Token    string

	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	SyncRetries         int

	GatesFile          string
	TimeZone           string
	DenyDuplicateScans bool
	ScanCooldown       time.Duration

	// Archive settings. An empty bucket disables archiving.
	ArchiveBucket    string
	ArchiveRegion    string
	ArchiveEndpoint  string
	ArchiveRetention time.Duration

	// Static archive credentials. Empty means the default AWS chain.
	ArchiveAccessKey string
	ArchiveSecretKey string

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000/api"
	c.DatabasePath = "scanner.db"
	c.SyncInterval = 5 * time.Minute
	c.OnlineCheckInterval = 10 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.SyncRetries = 2
	c.ScanCooldown = 2 * time.Second
	c.ArchiveRegion = "us-east-1"
	c.ArchiveRetention = 7 * 24 * time.Hour
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Location resolves TimeZone. Empty means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
