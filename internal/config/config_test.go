package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"velociplayer/internal/captions"
	"velociplayer/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VELOCIPLAYER_API_BIND", "")
	t.Setenv("VELOCIPLAYER_API_TOKEN", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "velociplayer", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if want := filepath.Join(tempHome, ".local", "share", "velociplayer", "library.db"); cfg.Paths.LibraryPath != want {
		t.Fatalf("library path = %q, want %q", cfg.Paths.LibraryPath, want)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7491" {
		t.Fatalf("unexpected api bind %q", cfg.Paths.APIBind)
	}
	if cfg.BuildOptions().Ordering != captions.OrderByID {
		t.Fatalf("unexpected ordering %q", cfg.BuildOptions().Ordering)
	}
	if cfg.TickInterval() != 100*time.Millisecond || cfg.SeekInterval() != 10*time.Second {
		t.Fatalf("unexpected playback intervals %v %v", cfg.TickInterval(), cfg.SeekInterval())
	}
	if cfg.LogFilePath() != filepath.Join(tempHome, ".local", "share", "velociplayer", "logs", "velociplayer.log") {
		t.Fatalf("unexpected log file %q", cfg.LogFilePath())
	}
}

func TestLoadCustomFile(t *testing.T) {
	t.Setenv("VELOCIPLAYER_API_BIND", "")
	t.Setenv("VELOCIPLAYER_API_TOKEN", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
library_path = "` + filepath.ToSlash(filepath.Join(dir, "lib.db")) + `"
api_bind = " 0.0.0.0:9000 "

[captions]
ordering = "Start"
charset = "Windows-1252"

[playback]
tick_interval_ms = 250

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" {
		t.Fatalf("api bind not trimmed: %q", cfg.Paths.APIBind)
	}
	if cfg.BuildOptions().Ordering != captions.OrderByStart {
		t.Fatalf("ordering = %q", cfg.Captions.Ordering)
	}
	if cfg.Captions.Charset != "windows-1252" {
		t.Fatalf("charset = %q", cfg.Captions.Charset)
	}
	if cfg.TickInterval() != 250*time.Millisecond {
		t.Fatalf("tick interval = %v", cfg.TickInterval())
	}
	if cfg.Playback.SeekIntervalSeconds != 10 || cfg.Playback.Timescale != 10000 {
		t.Fatalf("playback defaults not applied: %+v", cfg.Playback)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
}

func TestEnvOverridesAPISettings(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VELOCIPLAYER_API_BIND", "127.0.0.1:9999")
	t.Setenv("VELOCIPLAYER_API_TOKEN", " s3cret ")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9999" {
		t.Fatalf("api bind = %q", cfg.Paths.APIBind)
	}
	if cfg.Paths.APIToken != "s3cret" {
		t.Fatalf("api token = %q", cfg.Paths.APIToken)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VELOCIPLAYER_API_BIND", "")
	t.Setenv("VELOCIPLAYER_API_TOKEN", "")
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "ordering", content: "[captions]\nordering = \"chronological\"\n", wantErr: "captions.ordering"},
		{name: "charset", content: "[captions]\ncharset = \"klingon-8\"\n", wantErr: "captions.charset"},
		{name: "tick", content: "[playback]\ntick_interval_ms = 1\n", wantErr: "playback.tick_interval_ms"},
		{name: "seek", content: "[playback]\nseek_interval_seconds = -3\n", wantErr: "playback.seek_interval_seconds"},
		{name: "bind", content: "[paths]\napi_bind = \"localhost\"\n", wantErr: "paths.api_bind"},
		{name: "format", content: "[logging]\nformat = \"xml\"\n", wantErr: "logging.format"},
		{name: "level", content: "[logging]\nlevel = \"loud\"\n", wantErr: "logging.level"},
		{name: "unknown key", content: "[paths]\nstaging_dir = \"/tmp\"\n", wantErr: "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	var sample config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &sample); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	def := config.Default()
	if sample != def {
		t.Fatalf("sample config drifted from defaults:\n sample=%+v\n default=%+v", sample, def)
	}
}

func TestCreateSampleWritesLoadableFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VELOCIPLAYER_API_BIND", "")
	t.Setenv("VELOCIPLAYER_API_TOKEN", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("Load sample: exists=%v err=%v", exists, err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.LibraryPath = filepath.Join(root, "data", "library.db")
	cfg.Paths.LockPath = filepath.Join(root, "run", "velociplayer.lock")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{"logs", "data", "run"} {
		if info, err := os.Stat(filepath.Join(root, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
