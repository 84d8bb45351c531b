package main

import (
	"fmt"
	"os"
	"strings"

	"velociplayer/internal/captions"
	"velociplayer/internal/config"
)

// readSubtitleFile loads and decodes path. Empty charset or ordering fall
// back to the [captions] settings.
func readSubtitleFile(cfg *config.Config, path, charset, ordering string) (*captions.Track, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read subtitle file: %w", err)
	}
	opts, err := buildOptions(cfg, ordering)
	if err != nil {
		return nil, nil, err
	}
	track, err := captions.DecodeBytes(data, resolveCharset(cfg, charset), opts)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return track, data, nil
}

func buildOptions(cfg *config.Config, ordering string) (captions.BuildOptions, error) {
	opts := cfg.BuildOptions()
	if strings.TrimSpace(ordering) == "" {
		return opts, nil
	}
	parsed, err := captions.ParseOrdering(ordering)
	if err != nil {
		return captions.BuildOptions{}, err
	}
	opts.Ordering = parsed
	return opts, nil
}

func resolveCharset(cfg *config.Config, charset string) string {
	if trimmed := strings.TrimSpace(charset); trimmed != "" {
		return trimmed
	}
	return cfg.Captions.Charset
}
