package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/entries"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/scans"
	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/timex"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
)

// VerificationVerified marks check-ins whose admission was decided locally.
const VerificationVerified = "verified"

// SyncService moves data between the local stores and the remote authority.
// Network calls never run inside a local transaction: the queue is read
// before an upload and written only after the server acknowledged it.
type SyncService interface {
	// DownloadEntries replaces the entry cache with the server's snapshot and
	// returns the number of cached entries. On any failure the cache is left
	// untouched.
	DownloadEntries(ctx context.Context, sess models.Session, filter client.EntryFilter) (int, error)

	// UploadPendingScans submits every unuploaded scan as one batch and marks
	// all of them uploaded once the server accepts it. Returns
	// ErrSyncInProgress if another upload is running.
	UploadPendingScans(ctx context.Context, sess models.Session) (models.UploadResult, error)

	// SyncCycle downloads then uploads. Both steps run; errors are combined.
	SyncCycle(ctx context.Context, sess models.Session, filter client.EntryFilter) (models.UploadResult, error)

	// Stats reports local counters without touching the network.
	Stats(ctx context.Context) (models.SyncStats, error)
}

// SyncOptions configures retries of transient network failures.
type SyncOptions struct {
	MaxRetries uint64
	RetryBase  time.Duration
	Clock      timex.Clock
}

type syncService struct {
	client       client.Client
	entryRepo    entries.Repository
	scanRepo     scans.Repository
	metadataRepo metadata.Repository
	opts         SyncOptions
	log          logging.Logger

	downloading atomic.Bool
	uploading   atomic.Bool
}

func NewSyncService(c client.Client, entryRepo entries.Repository, scanRepo scans.Repository,
	metadataRepo metadata.Repository, opts SyncOptions, log logging.Logger) SyncService {
	if opts.RetryBase <= 0 {
		opts.RetryBase = 500 * time.Millisecond
	}
	return &syncService{
		client:       c,
		entryRepo:    entryRepo,
		scanRepo:     scanRepo,
		metadataRepo: metadataRepo,
		opts:         opts,
		log:          log.With("component", "sync"),
	}
}

func (s *syncService) DownloadEntries(ctx context.Context, sess models.Session, filter client.EntryFilter) (int, error) {
	if !s.downloading.CompareAndSwap(false, true) {
		return 0, ErrSyncInProgress
	}
	defer s.downloading.Store(false)

	var resp *client.EntriesResponse
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		resp, err = s.client.FetchEntries(ctx, sess.Token, filter)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("download entries: %w", err)
	}

	if err := validateSnapshot(resp); err != nil {
		return 0, fmt.Errorf("download entries: %w", err)
	}

	if err := s.entryRepo.Replace(ctx, resp.Entries); err != nil {
		return 0, fmt.Errorf("%w: replace entries: %w", common.ErrStorage, err)
	}

	s.touch(ctx, metadata.KeyLastDownloadAt)
	s.log.Info(ctx, "entries downloaded", "count", len(resp.Entries), "gate", filter.GateNumber)
	return len(resp.Entries), nil
}

func validateSnapshot(resp *client.EntriesResponse) error {
	if !resp.Success {
		return fmt.Errorf("%w: server reported failure", client.ErrServer)
	}
	if resp.Entries == nil {
		return fmt.Errorf("%w: entries missing", client.ErrMalformedResponse)
	}
	if resp.Count != len(resp.Entries) {
		return fmt.Errorf("%w: count %d does not match %d entries",
			client.ErrMalformedResponse, resp.Count, len(resp.Entries))
	}

	seen := make(map[int64]struct{}, len(resp.Entries))
	for _, e := range resp.Entries {
		if e.EntryID <= 0 {
			return fmt.Errorf("%w: invalid entry id %d", client.ErrMalformedResponse, e.EntryID)
		}
		if _, dup := seen[e.EntryID]; dup {
			return fmt.Errorf("%w: duplicate entry id %d", client.ErrMalformedResponse, e.EntryID)
		}
		seen[e.EntryID] = struct{}{}
	}
	return nil
}

func (s *syncService) UploadPendingScans(ctx context.Context, sess models.Session) (models.UploadResult, error) {
	if !s.uploading.CompareAndSwap(false, true) {
		return models.UploadResult{}, ErrSyncInProgress
	}
	defer s.uploading.Store(false)

	pending, err := s.scanRepo.ListUnuploaded(ctx)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("%w: list pending scans: %w", common.ErrStorage, err)
	}
	if len(pending) == 0 {
		return models.UploadResult{}, nil
	}

	batch := make([]client.CheckIn, len(pending))
	ids := make([]int64, len(pending))
	for i, p := range pending {
		batch[i] = toCheckIn(p)
		ids[i] = p.ID
	}

	var resp *client.BatchResponse
	err = s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		resp, err = s.client.UploadCheckIns(ctx, sess.Token, batch)
		return err
	})
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("upload scans: %w", err)
	}
	if !resp.Success {
		return models.UploadResult{}, fmt.Errorf("upload scans: %w: %s", client.ErrServer, resp.Message)
	}

	// The server has the batch; marking must not be abandoned halfway.
	if err := s.scanRepo.MarkUploaded(context.WithoutCancel(ctx), ids); err != nil {
		return models.UploadResult{}, fmt.Errorf("%w: mark uploaded: %w", common.ErrStorage, err)
	}

	s.touch(ctx, metadata.KeyLastUploadAt)

	result := models.UploadResult{
		Total:      resp.Total,
		Created:    resp.Created,
		Duplicates: resp.Duplicates,
		Errors:     resp.Errors,
	}
	s.log.Info(ctx, "scans uploaded", "submitted", len(ids), "created", result.Created,
		"duplicates", result.Duplicates, "errors", result.Errors)
	return result, nil
}

func toCheckIn(p models.PendingScan) client.CheckIn {
	return client.CheckIn{
		EntryID:            p.EntryID,
		SessionType:        p.SessionType,
		SessionName:        p.SessionName,
		GateNumber:         p.GateNumber,
		GateLocation:       p.GateLocation,
		ScannerDeviceID:    p.ScannerDeviceID,
		ScannerOperator:    p.ScannerOperator,
		CheckInTime:        p.CheckInTime.UTC().Format(common.CheckInTimeLayout),
		VerificationStatus: VerificationVerified,
	}
}

func (s *syncService) SyncCycle(ctx context.Context, sess models.Session, filter client.EntryFilter) (models.UploadResult, error) {
	var errs error
	if _, err := s.DownloadEntries(ctx, sess, filter); err != nil {
		errs = multierr.Append(errs, err)
	}
	result, err := s.UploadPendingScans(ctx, sess)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	return result, errs
}

func (s *syncService) Stats(ctx context.Context) (models.SyncStats, error) {
	total, err := s.entryRepo.Count(ctx)
	if err != nil {
		return models.SyncStats{}, err
	}
	pending, err := s.scanRepo.CountUnuploaded(ctx)
	if err != nil {
		return models.SyncStats{}, err
	}

	stats := models.SyncStats{TotalEntries: total, PendingScans: pending}
	stats.LastDownloadAt = s.stamp(ctx, metadata.KeyLastDownloadAt)
	stats.LastUploadAt = s.stamp(ctx, metadata.KeyLastUploadAt)
	return stats, nil
}

// withRetry retries fn while the server is unreachable.
func (s *syncService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(s.opts.MaxRetries, retry.NewExponential(s.opts.RetryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, client.ErrUnavailable) && ctx.Err() == nil {
			s.log.Debug(ctx, "server unavailable, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *syncService) touch(ctx context.Context, key string) {
	now := s.opts.Clock.Now().UTC().Format(time.RFC3339)
	if err := s.metadataRepo.Set(context.WithoutCancel(ctx), key, now); err != nil {
		s.log.Warn(ctx, "failed to record sync time", "key", key, "error", err)
	}
}

func (s *syncService) stamp(ctx context.Context, key string) time.Time {
	v, ok, err := s.metadataRepo.Get(ctx, key)
	if err != nil || !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
