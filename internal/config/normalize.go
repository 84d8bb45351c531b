package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCaptions()
	c.normalizePlayback()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.LibraryPath) == "" {
		c.Paths.LibraryPath = defaultLibraryPath
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = defaultLockPath
	}

	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.LibraryPath, err = expandPath(strings.TrimSpace(c.Paths.LibraryPath)); err != nil {
		return fmt.Errorf("paths.library_path: %w", err)
	}
	if c.Paths.LockPath, err = expandPath(strings.TrimSpace(c.Paths.LockPath)); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}

	if value, ok := os.LookupEnv(envAPIBind); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIBind = value
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if value, ok := os.LookupEnv(envAPIToken); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIToken = value
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeCaptions() {
	c.Captions.Ordering = strings.ToLower(strings.TrimSpace(c.Captions.Ordering))
	if c.Captions.Ordering == "" {
		c.Captions.Ordering = defaultOrdering
	}
	c.Captions.Charset = strings.ToLower(strings.TrimSpace(c.Captions.Charset))
	if c.Captions.Charset == "" {
		c.Captions.Charset = defaultCharset
	}
}

func (c *Config) normalizePlayback() {
	if c.Playback.TickIntervalMS == 0 {
		c.Playback.TickIntervalMS = defaultTickIntervalMS
	}
	if c.Playback.SeekIntervalSeconds == 0 {
		c.Playback.SeekIntervalSeconds = defaultSeekIntervalSeconds
	}
	if c.Playback.Timescale == 0 {
		c.Playback.Timescale = defaultTimescale
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
