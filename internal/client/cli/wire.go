package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophgate/internal/client/archive"
	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/config"
	"github.com/dmitrijs2005/gophgate/internal/client/services"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/timex"
)

// Open builds an App backed by the SQLite database, the HTTP authority client
// and, when a bucket is configured, the S3 archive.
func Open(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	gates, err := config.LoadGates(c.GatesFile)
	if err != nil {
		return nil, err
	}

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	repos := client.NewRepositories(db)
	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	clock := timex.Clock(nil)

	retries := uint64(0)
	if c.SyncRetries > 0 {
		retries = uint64(c.SyncRetries)
	}

	d := Deps{
		Admission: services.NewAdmissionService(repos.Entries, repos.Scans, services.AdmissionOptions{
			Gates:          gates,
			Location:       loc,
			DenyDuplicates: c.DenyDuplicateScans,
		}, log),
		Sync: services.NewSyncService(apiClient, repos.Entries, repos.Scans, repos.Metadata,
			services.SyncOptions{MaxRetries: retries, Clock: clock}, log),
		Device: services.NewDeviceService(repos.Metadata),
		Pinger: apiClient,
		Gates:  gates,
		Clock:  clock,
		Log:    log,
		In:     in,
		Out:    out,
		Closer: db,
	}

	if c.ArchiveBucket != "" {
		s3c, err := archive.NewS3Client(ctx, archive.S3Options{
			Region:    c.ArchiveRegion,
			Endpoint:  c.ArchiveEndpoint,
			AccessKey: c.ArchiveAccessKey,
			SecretKey: c.ArchiveSecretKey,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("archive client: %w", err)
		}
		d.Archiver = archive.NewArchiver(s3c, c.ArchiveBucket, repos.Scans, c.ArchiveRetention, clock, log)
	}

	return NewApp(c, d), nil
}
