package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophgate/internal/flagx"
	"github.com/dmitrijs2005/gophgate/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// keep the value already in Config.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	DatabasePath        string         `json:"database_path"`
	Gate                string         `json:"gate"`
	Operator            string         `json:"operator"`
	Token               string         `json:"token"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	SyncRetries         *int           `json:"sync_retries"`
	GatesFile           string         `json:"gates_file"`
	TimeZone            string         `json:"time_zone"`
	DenyDuplicateScans  *bool          `json:"deny_duplicate_scans"`
	ScanCooldown        timex.Duration `json:"scan_cooldown"`
	ArchiveBucket       string         `json:"archive_bucket"`
	ArchiveRegion       string         `json:"archive_region"`
	ArchiveEndpoint     string         `json:"archive_endpoint"`
	ArchiveRetention    timex.Duration `json:"archive_retention"`
	ArchiveAccessKey    string         `json:"archive_access_key"`
	ArchiveSecretKey    string         `json:"archive_secret_key"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.Gate, jc.Gate)
	setString(&cfg.Operator, jc.Operator)
	setString(&cfg.Token, jc.Token)
	setString(&cfg.GatesFile, jc.GatesFile)
	setString(&cfg.TimeZone, jc.TimeZone)
	setString(&cfg.ArchiveBucket, jc.ArchiveBucket)
	setString(&cfg.ArchiveRegion, jc.ArchiveRegion)
	setString(&cfg.ArchiveEndpoint, jc.ArchiveEndpoint)
	setString(&cfg.ArchiveAccessKey, jc.ArchiveAccessKey)
	setString(&cfg.ArchiveSecretKey, jc.ArchiveSecretKey)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.SyncInterval.Duration > 0 {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ScanCooldown.Duration > 0 {
		cfg.ScanCooldown = jc.ScanCooldown.Duration
	}
	if jc.ArchiveRetention.Duration > 0 {
		cfg.ArchiveRetention = jc.ArchiveRetention.Duration
	}
	if jc.SyncRetries != nil {
		cfg.SyncRetries = *jc.SyncRetries
	}
	if jc.DenyDuplicateScans != nil {
		cfg.DenyDuplicateScans = *jc.DenyDuplicateScans
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
