package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   API root of the check-in server
//	-d string   path of the local SQLite database
//	-g string   gate this device is stationed at
//	-o string   operator name recorded on check-ins
//	-t string   access token
//	-i int      background sync interval in seconds
//	-f string   JSON file with gate profiles
//	-z string   IANA time zone of gate dates and windows
//	-dup        deny a second admission at the same gate on the same day
//	-l string   log level (debug, info, warn, error)
//
// Archive flags: -archive-bucket, -archive-region, -archive-endpoint and
// -archive-retention (hours).
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-d", "-g", "-o", "-t", "-i", "-f", "-z", "-l",
			"-archive-bucket", "-archive-region", "-archive-endpoint", "-archive-retention"},
		"-dup")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "API root of the check-in server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.Gate, "g", cfg.Gate, "gate id")
	fs.StringVar(&cfg.Operator, "o", cfg.Operator, "operator name")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "access token")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "sync interval (in seconds)")
	fs.StringVar(&cfg.GatesFile, "f", cfg.GatesFile, "gate profiles file")
	fs.StringVar(&cfg.TimeZone, "z", cfg.TimeZone, "time zone")
	fs.BoolVar(&cfg.DenyDuplicateScans, "dup", cfg.DenyDuplicateScans, "deny duplicate scans")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.ArchiveBucket, "archive-bucket", cfg.ArchiveBucket, "S3 bucket for uploaded scans")
	fs.StringVar(&cfg.ArchiveRegion, "archive-region", cfg.ArchiveRegion, "S3 region")
	fs.StringVar(&cfg.ArchiveEndpoint, "archive-endpoint", cfg.ArchiveEndpoint, "S3 endpoint override")
	retention := fs.Int("archive-retention", int(cfg.ArchiveRetention.Hours()), "keep uploaded scans locally (in hours)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
	cfg.ArchiveRetention = time.Duration(*retention) * time.Hour
}
