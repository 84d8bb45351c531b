package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"velociplayer/internal/config"
	"velociplayer/internal/logging"
	"velociplayer/internal/rational"
	"velociplayer/internal/services"
)

const (
	maxSubtitleBytes = 8 << 20
	maxTimeBodyBytes = 4 << 10
)

type apiServer struct {
	bind    string
	charset string
	logger  *slog.Logger
	daemon  *Daemon
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	done     <-chan struct{}
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:    strings.TrimSpace(cfg.Paths.APIBind),
		charset: cfg.Captions.Charset,
		logger:  logging.NewComponentLogger(logger, "api-server"),
		daemon:  d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("GET /api/caption", srv.handleCaption)
	mux.HandleFunc("PUT /api/captions", srv.handleLoadCaptions)
	mux.HandleFunc("DELETE /api/captions", srv.handleRemoveCaptions)
	mux.HandleFunc("POST /api/captions/library/{id}", srv.handleLoadFromLibrary)
	mux.HandleFunc("POST /api/time", srv.handleTime)
	mux.HandleFunc("POST /api/duration", srv.handleDuration)
	mux.HandleFunc("GET /api/stream", srv.handleStream)

	srv.handler = srv.withRequestID(authMiddleware(cfg.Paths.APIToken, mux))
	return srv
}

// Handler exposes the API for embedding and tests without binding a port.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.done = ctx.Done()
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.mu.Lock()
	server, listener := s.server, s.listener
	s.server, s.listener = nil, nil
	s.mu.Unlock()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	if listener != nil {
		_ = listener.Close()
	}
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) shutdownSignal() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleCaption(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.daemon.adapter.Current())
}

func (s *apiServer) handleLoadCaptions(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSubtitleBytes))
	if err != nil {
		s.writeServiceError(w, r, services.Wrap(services.ErrValidation, "api", "load captions", "read body", err))
		return
	}
	charset := strings.TrimSpace(r.URL.Query().Get("charset"))
	if charset == "" {
		charset = s.charset
	}
	if err := s.daemon.adapter.LoadBytes(data, charset); err != nil {
		s.writeServiceError(w, r, services.Wrap(services.ErrValidation, "api", "load captions", "decode subtitle payload", err))
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.daemon.adapter.Snapshot())
}

func (s *apiServer) handleRemoveCaptions(w http.ResponseWriter, r *http.Request) {
	s.daemon.adapter.Remove()
	s.writeJSON(w, r, http.StatusOK, s.daemon.adapter.Snapshot())
}

func (s *apiServer) handleLoadFromLibrary(w http.ResponseWriter, r *http.Request) {
	if s.daemon.store == nil {
		s.writeServiceError(w, r, services.Wrap(services.ErrUnavailable, "api", "load library subtitle", "library is not open", nil))
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, http.StatusBadRequest, "invalid subtitle id")
		return
	}
	ctx := services.WithSubtitleID(r.Context(), id)
	track, err := s.daemon.store.Track(ctx, id)
	if err != nil {
		s.writeServiceError(w, r.WithContext(ctx), err)
		return
	}
	s.daemon.adapter.Install(track)
	logging.WithContext(ctx, s.logger).Info("library subtitle loaded")
	s.writeJSON(w, r, http.StatusOK, s.daemon.adapter.Snapshot())
}

func (s *apiServer) handleTime(w http.ResponseWriter, r *http.Request) {
	t, ok := s.readTime(w, r)
	if !ok {
		return
	}
	s.daemon.adapter.TimeChanged(t)
	s.writeJSON(w, r, http.StatusOK, s.daemon.adapter.Current())
}

func (s *apiServer) handleDuration(w http.ResponseWriter, r *http.Request) {
	d, ok := s.readTime(w, r)
	if !ok {
		return
	}
	if d.IsNegative() {
		s.writeServiceError(w, r, services.Wrap(services.ErrValidation, "api", "set duration", "duration must not be negative", nil))
		return
	}
	s.daemon.adapter.SetDuration(d)
	s.writeJSON(w, r, http.StatusOK, s.daemon.adapter.Snapshot())
}

func (s *apiServer) readTime(w http.ResponseWriter, r *http.Request) (rational.Time, bool) {
	var t rational.Time
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTimeBodyBytes))
	if err := dec.Decode(&t); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid time: "+err.Error())
		return rational.Time{}, false
	}
	if !t.Valid() {
		s.writeError(w, r, http.StatusBadRequest, "invalid time: missing timescale")
		return rational.Time{}, false
	}
	return t, true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeJSON(w, r, status, map[string]string{"error": message})
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	logger := logging.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("api request failed", logging.Int("status", status), logging.Error(err))
	} else {
		logger.Warn("api request rejected", logging.Int("status", status), logging.Error(err))
	}
	s.writeError(w, r, status, err.Error())
}
