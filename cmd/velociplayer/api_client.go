package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"velociplayer/internal/captions"
	"velociplayer/internal/config"
	"velociplayer/internal/daemon"
	"velociplayer/internal/playback"
	"velociplayer/internal/rational"
)

// apiClient talks to a running `velociplayer serve`.
type apiClient struct {
	base  string
	token string
	http  *http.Client
}

func newAPIClient(cfg *config.Config) *apiClient {
	return &apiClient{
		base:  "http://" + cfg.Paths.APIBind,
		token: cfg.Paths.APIToken,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapDialError(err, c.base)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("daemon returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) Status(ctx context.Context) (daemon.Status, error) {
	var st daemon.Status
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &st)
	return st, err
}

func (c *apiClient) LoadCaptions(ctx context.Context, data []byte, charset string) (playback.Status, error) {
	path := "/api/captions"
	if charset != "" {
		path += "?charset=" + url.QueryEscape(charset)
	}
	var st playback.Status
	err := c.do(ctx, http.MethodPut, path, data, &st)
	return st, err
}

func (c *apiClient) LoadLibrary(ctx context.Context, id int64) (playback.Status, error) {
	var st playback.Status
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/captions/library/%d", id), nil, &st)
	return st, err
}

func (c *apiClient) SetTime(ctx context.Context, t rational.Time) (*captions.Caption, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var current *captions.Caption
	err = c.do(ctx, http.MethodPost, "/api/time", body, &current)
	return current, err
}

func (c *apiClient) SetDuration(ctx context.Context, d rational.Time) error {
	body, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/duration", body, nil)
}

func wrapDialError(err error, base string) error {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon at %s: connection refused; start it with `velociplayer serve`", strings.TrimPrefix(base, "http://"))
	default:
		return fmt.Errorf("connect to daemon: %w", err)
	}
}
