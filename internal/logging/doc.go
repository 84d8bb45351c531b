// Package logging assembles structured slog loggers for velociplayer.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so HTTP handlers tag log lines
// with request correlation ids. The daemon tees console output with a JSON
// log file through TeeHandler. A no-op logger is provided for tests and for
// wiring code that must not fail.
package logging
