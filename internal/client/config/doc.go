// Package config loads runtime configuration for the scanner CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "5m" or
// integer nanoseconds:
//
//	{
//	  "server_url": "https://checkin.example.org/api",
//	  "database_path": "/var/lib/scanner/scanner.db",
//	  "gate": "Gate 1",
//	  "sync_interval": "5m",
//	  "time_zone": "Asia/Kolkata",
//	  "deny_duplicate_scans": true
//	}
//
// Gate profiles come from DefaultGates unless a gates file is configured
// (see LoadGates).
package config
