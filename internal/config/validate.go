package config

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/text/encoding/htmlindex"

	"velociplayer/internal/captions"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryPath == "" {
		return errors.New("paths.library_path must be set")
	}
	if c.Paths.LockPath == "" {
		return errors.New("paths.lock_path must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q must be host:port: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if _, err := captions.ParseOrdering(c.Captions.Ordering); err != nil {
		return fmt.Errorf("captions.ordering: %w", err)
	}
	switch c.Captions.Charset {
	case "utf-8", "utf8":
		return nil
	}
	if _, err := htmlindex.Get(c.Captions.Charset); err != nil {
		return fmt.Errorf("captions.charset: unsupported charset %q", c.Captions.Charset)
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.TickIntervalMS < 10 || c.Playback.TickIntervalMS > 10_000 {
		return errors.New("playback.tick_interval_ms must be between 10 and 10000")
	}
	if c.Playback.SeekIntervalSeconds <= 0 {
		return errors.New("playback.seek_interval_seconds must be positive")
	}
	if c.Playback.Timescale <= 0 {
		return errors.New("playback.timescale must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
