package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/services"
)

// StartScheduler runs a sync cycle every interval while the device is online,
// followed by an archive pass when archiving is configured.
func (a *App) StartScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.runScheduled(ctx)

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) runScheduled(ctx context.Context) {
	sess, _ := a.current()
	if a.mode() != ModeOnline || sess.Token == "" {
		a.log.Debug(ctx, "scheduled sync skipped", "mode", a.mode())
		return
	}

	res, err := a.sync.SyncCycle(ctx, sess, a.filter())
	switch {
	case errors.Is(err, services.ErrSyncInProgress):
		a.log.Debug(ctx, "scheduled sync overlaps a running one")
	case err != nil:
		a.log.Warn(ctx, "scheduled sync failed", "error", err)
	default:
		a.log.Info(ctx, "scheduled sync", "uploaded", res.Total, "created", res.Created,
			"duplicates", res.Duplicates, "errors", res.Errors)
	}

	if a.archiver == nil {
		return
	}
	n, err := a.archiver.Run(ctx, sess.DeviceID)
	if err != nil {
		a.log.Warn(ctx, "archive failed", "error", err)
		return
	}
	if n > 0 {
		a.log.Info(ctx, "archived scans", "count", n)
	}
}
