package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerNilHandlers(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for all nil handlers")
	}
}

func TestNewFanoutHandlerSingleHandler(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsEachLevel(t *testing.T) {
	var info, debug bytes.Buffer
	h := TeeHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout to be enabled when any handler accepts debug")
	}

	logger := slog.New(h).With("component", "test")
	logger.Debug("debug line")
	logger.Info("info line")

	if strings.Contains(info.String(), "debug line") {
		t.Fatalf("info handler received debug record: %q", info.String())
	}
	if !strings.Contains(info.String(), "info line") || !strings.Contains(info.String(), "component=test") {
		t.Fatalf("info handler missing record: %q", info.String())
	}
	if !strings.Contains(debug.String(), "debug line") || !strings.Contains(debug.String(), "info line") {
		t.Fatalf("debug handler missing records: %q", debug.String())
	}
}
