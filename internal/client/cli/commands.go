package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/dmitrijs2005/gophgate/internal/client/services"
)

var (
	errNoGate       = errors.New("no gate selected")
	errUnknownGate  = errors.New("unknown gate")
	errNoToken      = errors.New("no access token")
	errArchiveOff   = errors.New("archiving is disabled")
	errEmptyPayload = errors.New("empty payload")
)

const tokenHint = "Check the access token with 'token'"

// Scan admits or denies one raw payload at the active gate.
func (a *App) Scan(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		a.printf("Nothing to scan")
		return errEmptyPayload
	}

	sess, gate := a.current()
	if gate == "" {
		a.printf("Select a gate first with 'gate <id>'")
		return errNoGate
	}

	if !a.cooldown.Allow(raw) {
		a.printf("Same code scanned moments ago, ignored")
		return services.ErrScanCooldown
	}

	rec, err := a.admission.Scan(ctx, sess, raw, gate, a.clock.Now())
	if err != nil {
		a.cooldown.Forget(raw)
		a.log.Error(ctx, "scan not recorded", "gate", gate, "error", err)
		a.printf("SCAN NOT RECORDED: %v. Please scan again.", err)
		return err
	}

	a.remember(*rec)
	a.printRecord(rec)
	return nil
}

// ScanPass reads a multi-line readable pass and scans it.
func (a *App) ScanPass(ctx context.Context) error {
	raw, err := GetMultiline(a.reader, "Paste the pass text", a.out)
	if err != nil {
		return err
	}
	return a.Scan(ctx, raw)
}

func (a *App) printRecord(r *models.ScanRecord) {
	if r.Allowed {
		a.printf("ALLOWED  #%d %s (%s) - %s", r.EntryID, r.Name, r.Organization, r.Message)
		return
	}
	if r.Name != "" {
		a.printf("DENIED   #%d %s (%s) - %s", r.EntryID, r.Name, r.Organization, r.Reason)
		return
	}
	a.printf("DENIED   %s", r.Reason)
}

// Sync downloads a fresh snapshot and uploads the pending queue.
func (a *App) Sync(ctx context.Context) error {
	sess, ok := a.authorized()
	if !ok {
		return errNoToken
	}

	res, err := a.sync.SyncCycle(ctx, sess, a.filter())
	a.printUpload(res)
	if err != nil {
		return a.reportSyncError("Sync", err)
	}
	a.printf("Sync complete")
	return nil
}

// Download replaces the entry cache with the authority's snapshot.
func (a *App) Download(ctx context.Context) error {
	sess, ok := a.authorized()
	if !ok {
		return errNoToken
	}

	n, err := a.sync.DownloadEntries(ctx, sess, a.filter())
	if err != nil {
		return a.reportSyncError("Download", err)
	}
	a.printf("Downloaded %d entries", n)
	return nil
}

// Upload submits the pending queue.
func (a *App) Upload(ctx context.Context) error {
	sess, ok := a.authorized()
	if !ok {
		return errNoToken
	}

	res, err := a.sync.UploadPendingScans(ctx, sess)
	if err != nil {
		return a.reportSyncError("Upload", err)
	}
	if res.Total == 0 {
		a.printf("Nothing to upload")
		return nil
	}
	a.printUpload(res)
	return nil
}

func (a *App) authorized() (models.Session, bool) {
	sess, _ := a.current()
	if sess.Token == "" {
		a.printf("No access token, set one with 'token'")
		return sess, false
	}
	return sess, true
}

func (a *App) printUpload(res models.UploadResult) {
	if res.Total == 0 {
		return
	}
	a.printf("Uploaded %d scans: %d created, %d duplicates, %d errors",
		res.Total, res.Created, res.Duplicates, res.Errors)
}

func (a *App) reportSyncError(op string, err error) error {
	switch {
	case errors.Is(err, services.ErrSyncInProgress):
		a.printf("%s skipped: another sync is running", op)
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		a.printf("%s failed: server unreachable, scans stay queued", op)
	case errors.Is(err, client.ErrUnauthorized):
		a.printf("%s failed: %v. %s", op, err, tokenHint)
	default:
		a.printf("%s failed: %v", op, err)
	}
	return err
}

// Stats prints local counters.
func (a *App) Stats(ctx context.Context) error {
	st, err := a.sync.Stats(ctx)
	if err != nil {
		a.printf("Stats unavailable: %v", err)
		return err
	}

	sess, gate := a.current()
	a.printf("Device:         %s", sess.DeviceID)
	a.printf("Operator:       %s", sess.Operator)
	a.printf("Gate:           %s", gate)
	a.printf("Mode:           %s", a.mode())
	a.printf("Cached entries: %d", st.TotalEntries)
	a.printf("Pending scans:  %d", st.PendingScans)
	a.printf("Last download:  %s", formatStamp(st.LastDownloadAt))
	a.printf("Last upload:    %s", formatStamp(st.LastUploadAt))
	return nil
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

// Gates lists the configured gate profiles.
func (a *App) Gates(ctx context.Context) error {
	a.printGates()
	return nil
}

func (a *App) printGates() {
	_, current := a.current()

	ids := make([]string, 0, len(a.gates))
	for id := range a.gates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		g := a.gates[id]
		mark := " "
		if id == current {
			mark = "*"
		}
		passes := "any pass"
		if len(g.AllowedPasses) > 0 {
			passes = strings.Join(g.AllowedPasses, ",")
		}
		a.printf("%s %-3s %-28s %-14s %s %s  %s", mark, id, g.Name, g.Location, g.Date, g.Time, passes)
	}
}

// SetGate makes id the active gate and refreshes the cache when online.
func (a *App) SetGate(ctx context.Context, id string) error {
	if _, ok := a.gates[id]; !ok {
		a.printf("Unknown gate %q", id)
		return errUnknownGate
	}

	a.mu.Lock()
	a.gate = id
	sess := a.session
	a.mu.Unlock()

	a.printf("Gate %s: %s", id, a.gates[id].Name)
	if a.mode() == ModeOnline && sess.Token != "" {
		_ = a.Download(ctx)
	}
	return nil
}

// Recent prints the latest decisions, newest first.
func (a *App) Recent(ctx context.Context) error {
	a.mu.Lock()
	list := make([]models.ScanRecord, len(a.recent))
	copy(list, a.recent)
	a.mu.Unlock()

	if len(list) == 0 {
		a.printf("No scans yet")
		return nil
	}
	for i := len(list) - 1; i >= 0; i-- {
		r := list[i]
		verdict := "DENIED "
		note := r.Reason
		if r.Allowed {
			verdict = "ALLOWED"
			note = r.Message
		}
		a.printf("%s %s gate %s #%d %s - %s", r.ScanTime.Format(time.TimeOnly), verdict, r.GateNumber, r.EntryID, r.Name, note)
	}
	return nil
}

// Archive runs an archive pass immediately.
func (a *App) Archive(ctx context.Context) error {
	if a.archiver == nil {
		a.printf("Archiving is disabled")
		return errArchiveOff
	}

	sess, _ := a.current()
	n, err := a.archiver.Run(ctx, sess.DeviceID)
	if err != nil {
		a.printf("Archive failed: %v", err)
		return err
	}
	a.printf("Archived %d scans", n)
	return nil
}

// Token replaces the access token of the session.
func (a *App) Token(ctx context.Context) error {
	token, err := GetSecret("Access token: ", a.out)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}

	sess, err := a.device.NewSession(ctx, token, a.config.Operator)
	if err != nil {
		a.printf("Token not applied: %v", err)
		return err
	}

	a.mu.Lock()
	a.session = sess
	a.mu.Unlock()

	a.printf("Signed in as %s", sess.Operator)
	return nil
}
