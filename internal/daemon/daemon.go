package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"velociplayer/internal/config"
	"velociplayer/internal/library"
	"velociplayer/internal/logging"
	"velociplayer/internal/playback"
	"velociplayer/internal/services"
)

// Daemon owns the caption adapter, the optional library store, and the
// single-instance lock.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	adapter *playback.Adapter
	store   *library.Store

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool            `json:"running"`
	PID          int             `json:"pid"`
	LockFilePath string          `json:"lock_file"`
	LibraryPath  string          `json:"library,omitempty"`
	APIAddress   string          `json:"api_address,omitempty"`
	Playback     playback.Status `json:"playback"`
}

// New constructs a daemon. The store may be nil, in which case library
// loads answer 503.
func New(cfg *config.Config, adapter *playback.Adapter, store *library.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || adapter == nil {
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "new", "config and adapter are required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		adapter:  adapter,
		store:    store,
		lockPath: cfg.Paths.LockPath,
		lock:     flock.New(cfg.Paths.LockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return services.Wrap(services.ErrConflict, "daemon", "start", "another velociplayer daemon is already running", nil)
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("velociplayer daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.api.addr()),
	)
	return nil
}

// Stop shuts the API down and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("velociplayer daemon stopped")
}

// Close stops the daemon and closes the library store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports whether the daemon is serving and the adapter state.
func (d *Daemon) Status() Status {
	st := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		APIAddress:   d.api.addr(),
		Playback:     d.adapter.Snapshot(),
	}
	if d.store != nil {
		st.LibraryPath = d.store.Path()
	}
	return st
}

// Addr returns the address the API listens on, or "" before Start.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Adapter returns the hosted adapter.
func (d *Daemon) Adapter() *playback.Adapter {
	return d.adapter
}
