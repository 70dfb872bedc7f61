package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/config"
	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/dmitrijs2005/gophgate/internal/client/services"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/timex"
	"golang.org/x/sync/errgroup"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const (
	pingTimeout  = 3 * time.Second
	recentLength = 20
)

// Pinger checks that the remote authority is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ArchiveRunner moves old uploaded scans out of the local queue.
// *archive.Archiver implements it.
type ArchiveRunner interface {
	Run(ctx context.Context, deviceID string) (int64, error)
}

// Deps are the collaborators of an App. Archiver and Closer are optional.
type Deps struct {
	Admission services.AdmissionService
	Sync      services.SyncService
	Device    services.DeviceService
	Pinger    Pinger
	Archiver  ArchiveRunner
	Gates     map[string]models.GateProfile
	Clock     timex.Clock
	Log       logging.Logger
	In        io.Reader
	Out       io.Writer
	Closer    io.Closer
}

type App struct {
	config    *config.Config
	admission services.AdmissionService
	sync      services.SyncService
	device    services.DeviceService
	pinger    Pinger
	archiver  ArchiveRunner
	gates     map[string]models.GateProfile
	cooldown  *services.Cooldown
	clock     timex.Clock
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer
	closer    io.Closer

	mu      sync.Mutex
	session models.Session
	gate    string
	Mode    Mode
	recent  []models.ScanRecord
}

func NewApp(c *config.Config, d Deps) *App {
	return &App{
		config:    c,
		admission: d.Admission,
		sync:      d.Sync,
		device:    d.Device,
		pinger:    d.Pinger,
		archiver:  d.Archiver,
		gates:     d.Gates,
		cooldown:  services.NewCooldown(c.ScanCooldown),
		clock:     d.Clock,
		log:       d.Log.With("component", "cli"),
		reader:    bufio.NewReader(d.In),
		out:       d.Out,
		closer:    d.Closer,
		Mode:      ModeOffline,
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// setMode switches the connectivity mode and reports whether it changed.
func (a *App) setMode(mode Mode) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode == mode {
		return false
	}
	a.Mode = mode
	a.log.Info(context.Background(), "switched mode", "mode", mode)
	return true
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) current() (models.Session, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session, a.gate
}

// filter selects the entries relevant to the active gate.
func (a *App) filter() client.EntryFilter {
	_, gate := a.current()
	f := client.EntryFilter{GateNumber: gate}
	if p, ok := a.gates[gate]; ok {
		f.Date = p.Date
	}
	return f
}

func (a *App) status() string {
	sess, gate := a.current()
	if gate == "" {
		gate = "-"
	}
	return fmt.Sprintf("%s gate %s %s", sess.Operator, gate, a.mode())
}

// Run signs the operator in, starts the background workers and blocks in the
// REPL until the operator exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if err := a.start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.StartOnlineStatusWatcher(gctx, a.config.OnlineCheckInterval)
		return nil
	})
	g.Go(func() error {
		a.StartScheduler(gctx, a.config.SyncInterval)
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(gctx, a, a.status, a.reader)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
	cancel()
	err := g.Wait()

	a.flush()
	return err
}

// start builds the session, selects the gate and loads entries when the
// authority is reachable.
func (a *App) start(ctx context.Context) error {
	token := a.config.Token
	if token == "" {
		t, err := GetSecret("Access token (empty to work offline): ", a.out)
		if err != nil {
			a.log.Warn(ctx, "token prompt failed", "error", err)
		}
		token = t
	}

	sess, err := a.device.NewSession(ctx, token, a.config.Operator)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	gate := a.config.Gate
	if _, ok := a.gates[gate]; !ok {
		if gate != "" {
			a.printf("Unknown gate %q", gate)
		}
		a.printGates()
		gate, err = GetSimpleText(a.reader, "Gate number:", a.out)
		if err != nil {
			return fmt.Errorf("read gate: %w", err)
		}
		if _, ok := a.gates[gate]; !ok {
			a.printf("Unknown gate %q, select one with 'gate <id>'", gate)
			gate = ""
		}
	}

	a.mu.Lock()
	a.session = sess
	a.gate = gate
	a.mu.Unlock()

	a.printf("Device %s, operator %s", sess.DeviceID, sess.Operator)
	a.checkOnline(ctx)
	if a.mode() == ModeOnline && token != "" && gate != "" {
		_ = a.Download(ctx)
	} else {
		a.printf("Working offline with cached entries")
	}
	return nil
}

// flush tries a last upload so queued scans leave the device promptly.
func (a *App) flush() {
	if a.mode() != ModeOnline {
		return
	}
	sess, _ := a.current()
	if sess.Token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.config.RequestTimeout)
	defer cancel()

	if _, err := a.sync.UploadPendingScans(ctx, sess); err != nil && !errors.Is(err, services.ErrSyncInProgress) {
		a.log.Warn(ctx, "final upload failed", "error", err)
	}
}

func (a *App) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		a.log.Error(context.Background(), "close database", "error", err)
	}
}

// checkOnline pings the authority once and updates the mode. It returns true
// when the device has just come back online.
func (a *App) checkOnline(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.pinger.Ping(ctx); err != nil {
		a.log.Debug(ctx, "ping failed", "error", err)
		a.setMode(ModeOffline)
		return false
	}
	return a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the authority every interval. Coming back
// online triggers an upload of the pending queue.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.checkOnline(ctx) {
				a.uploadInBackground(ctx)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) uploadInBackground(ctx context.Context) {
	sess, _ := a.current()
	if sess.Token == "" {
		return
	}

	res, err := a.sync.UploadPendingScans(ctx, sess)
	switch {
	case errors.Is(err, services.ErrSyncInProgress):
		a.log.Debug(ctx, "upload skipped", "reason", err)
	case err != nil:
		a.log.Warn(ctx, "background upload failed", "error", err)
	case res.Total > 0:
		a.log.Info(ctx, "background upload", "total", res.Total, "created", res.Created,
			"duplicates", res.Duplicates, "errors", res.Errors)
	}
}

func (a *App) remember(r models.ScanRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, r)
	if len(a.recent) > recentLength {
		a.recent = a.recent[len(a.recent)-recentLength:]
	}
}
