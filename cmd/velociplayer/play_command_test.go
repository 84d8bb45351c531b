package main

import (
	"context"
	"strings"
	"testing"
)

func TestPlayPrintsChanges(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"play", env.srtPath, "--rate", "100", "--interval", "1ms", "--duration", "8"}, env.configPath)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"[00:00:00,000] …",
		"Hello",
		"…",
		"World",
		"(end of captions)",
		"stopped at 00:00:08,000",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), lines)
	}
	for i, w := range want {
		if !strings.Contains(lines[i], w) {
			t.Fatalf("line %d = %q, want it to contain %q", i, lines[i], w)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatal("output to a buffer must not be colorized")
	}
}

func TestPlayFromOffsetStopsAtTrackEnd(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"play", env.srtPath, "--from", "5.2", "--rate", "50", "--interval", "1ms"}, env.configPath)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if strings.Contains(out, "Hello") {
		t.Fatalf("started past Hello but printed it: %q", out)
	}
	requireContains(t, out, "[00:00:05,200] World")
	requireContains(t, out, "stopped at 00:00:06,500")
}

func TestPlayRejectsBadInput(t *testing.T) {
	env := setupCLITestEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"negative rate", []string{"--rate=-1"}},
		{"zero rate", []string{"--rate=0"}},
		{"from not finite", []string{"--from=NaN"}},
		{"from out of range", []string{"--from=1e300"}},
		{"duration out of range", []string{"--duration=1e300"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"play", env.srtPath}, tt.args...)
			if _, _, err := runCLI(t, args, env.configPath); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}

func TestPlayControlsSeekAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	// Ticks are an hour apart, so every move after the first line comes from a control.
	input := strings.Join([]string{
		"pause",
		"seek 5.2",
		"status",
		"rate 2",
		"rate 0",
		"b 3",
		"status",
		"bogus",
		"seek 99",
	}, "\n") + "\n"
	out, _, err := runCLIInput(context.Background(),
		[]string{"play", env.srtPath, "--controls", "--interval", "1h"}, env.configPath, strings.NewReader(input))
	if err != nil {
		t.Fatalf("play: %v", err)
	}

	requireContains(t, out, "controls: seek <seconds>")
	requireContains(t, out, "at 00:00:05,200, rate 1x, paused")
	requireContains(t, out, "at 00:00:05,200, rate 2x, paused")
	requireContains(t, out, "rate needs a positive number")
	requireContains(t, out, "at 00:00:00,000, rate 2x, paused")
	requireContains(t, out, `unknown control "bogus"`)
	requireContains(t, out, "World")
	requireContains(t, out, "stopped at 00:00:06,500")
}

func TestPlayControlsQuit(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLIInput(context.Background(),
		[]string{"play", env.srtPath, "--controls", "--interval", "1h"}, env.configPath, strings.NewReader("seek 1.5\nquit\n"))
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	requireContains(t, out, "stopped at 00:00:01,500")
}
