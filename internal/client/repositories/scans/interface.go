// Package scans implements the durable queue of check-ins recorded on this
// device and not yet acknowledged by the server.
package scans

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/models"
)

// Repository is the pending scan queue.
type Repository interface {
	// Enqueue stores scan as not uploaded and returns its assigned id. The
	// record is durable once Enqueue returns. localDate is the YYYY-MM-DD day
	// of the check-in in the gate's time zone.
	Enqueue(ctx context.Context, scan *models.PendingScan, localDate string) (int64, error)

	// ListUnuploaded returns every pending scan ordered by id.
	ListUnuploaded(ctx context.Context) ([]models.PendingScan, error)

	// MarkUploaded flags the given ids as uploaded. Unknown or already
	// uploaded ids are ignored.
	MarkUploaded(ctx context.Context, ids []int64) error

	CountUnuploaded(ctx context.Context) (int, error)

	// HasScan reports whether the entry already checked in at gate on date.
	HasScan(ctx context.Context, entryID int64, gate, date string) (bool, error)

	// ListUploadedBefore returns uploaded scans created before t.
	ListUploadedBefore(ctx context.Context, t time.Time) ([]models.PendingScan, error)

	// PruneUploadedBefore deletes uploaded scans created before t whose id
	// does not exceed throughID.
	PruneUploadedBefore(ctx context.Context, t time.Time, throughID int64) (int64, error)
}
