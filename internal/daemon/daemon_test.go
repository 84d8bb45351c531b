package daemon_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"velociplayer/internal/config"
	"velociplayer/internal/daemon"
	"velociplayer/internal/library"
	"velociplayer/internal/logging"
	"velociplayer/internal/playback"
	"velociplayer/internal/services"
	"velociplayer/internal/testsupport"
)

func newDaemon(t *testing.T, cfg *config.Config, store *library.Store) *daemon.Daemon {
	t.Helper()
	adapter := playback.NewAdapter(playback.Options{Build: cfg.BuildOptions()})
	d, err := daemon.New(cfg, adapter, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func TestNewRequiresAdapter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemon.New(cfg, nil, nil, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without adapter, got %v", err)
	}
	if _, err := daemon.New(nil, playback.NewAdapter(playback.Options{}), nil, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without config, got %v", err)
	}
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLogDir())
	store := testsupport.MustOpenLibrary(t, cfg)
	d := newDaemon(t, cfg, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if d.Addr() != "" {
		t.Fatalf("address before start: %q", d.Addr())
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start on the same daemon to fail")
	}

	status := d.Status()
	if !status.Running || status.LockFilePath != cfg.Paths.LockPath || status.LibraryPath != cfg.Paths.LibraryPath {
		t.Fatalf("unexpected status %+v", status)
	}

	resp, err := http.Get("http://" + d.Addr() + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code %d", resp.StatusCode)
	}
	var remote daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !remote.Running || remote.Playback.Loaded {
		t.Fatalf("unexpected remote status %+v", remote)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to report stopped")
	}
	if d.Addr() != "" {
		t.Fatalf("address after stop: %q", d.Addr())
	}
}

func TestSecondInstanceIsRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLogDir())
	first := newDaemon(t, cfg, nil)
	second := newDaemon(t, cfg, nil)
	ctx := context.Background()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	err := second.Start(ctx)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("Start after release: %v", err)
	}
	second.Stop()
}

func TestStartFailsOnBadBind(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLogDir())
	cfg.Paths.APIBind = "127.0.0.1:not-a-port"
	d := newDaemon(t, cfg, nil)
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
	if d.Status().Running {
		t.Fatal("daemon should not be running")
	}

	// The lock must have been released.
	cfg.Paths.APIBind = "127.0.0.1:0"
	other := newDaemon(t, cfg, nil)
	if err := other.Start(context.Background()); err != nil {
		t.Fatalf("Start after failed start: %v", err)
	}
	other.Stop()
}

func TestStatusBodyIsJSON(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLogDir())
	d := newDaemon(t, cfg, nil)
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	resp, err := http.Get("http://" + d.Addr() + "/api/caption")
	if err != nil {
		t.Fatalf("GET caption: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type %q", got)
	}
	if string(body) != "null\n" {
		t.Fatalf("expected null caption, got %q", body)
	}
}
