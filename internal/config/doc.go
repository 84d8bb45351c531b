// Package config loads, normalizes, and validates velociplayer configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the VELOCIPLAYER_API_BIND environment override. The
// Config type carries every knob the daemon and CLI need: where the subtitle
// library and lock file live, how caption tracks are ordered, and how the
// simulated playback clock ticks.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical enum values, and clear validation errors.
package config
