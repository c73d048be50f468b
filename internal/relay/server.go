// Package relay serves a small HTTP endpoint that forwards a query to the
// configured backend and hands its reply back unchanged.
package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ory/herodot"
	"go.uber.org/zap"

	"github.com/csheth/citeview/internal/backend"
)

const (
	requestIDHeader = "X-Request-Id"
	shutdownTimeout = 5 * time.Second
)

// Config describes the upstream backend.
type Config struct {
	BackendURL string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Server struct {
	mux     *http.ServeMux
	backend string
	client  *http.Client
	writer  *herodot.JSONWriter
	logger  *zap.Logger
}

func NewServer(cfg Config) *Server {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mux:     http.NewServeMux(),
		backend: strings.TrimRight(strings.TrimSpace(cfg.BackendURL), "/"),
		client:  client,
		writer:  herodot.NewJSONWriter(nil),
		logger:  logger.Named("relay"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/api/proxy", s.forward)
	s.mux.HandleFunc("/healthz", s.healthCheck)
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.loggingMiddleware(s.mux)
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("relay listening", zap.String("addr", addr), zap.Bool("backend_configured", s.backend != ""))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("relay shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writer.WriteError(w, r, herodot.ErrNotFound.WithReasonf("no route for %s", r.URL.Path))
		return
	}
	s.forward(w, r)
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		s.writer.WriteError(w, r, &herodot.DefaultError{
			CodeField:   http.StatusMethodNotAllowed,
			StatusField: http.StatusText(http.StatusMethodNotAllowed),
			ErrorField:  "only GET is supported",
		})
		return
	}
	query := r.URL.Query().Get("query")
	if query == "" {
		s.writer.WriteError(w, r, herodot.ErrBadRequest.WithReason("Query parameter is required"))
		return
	}
	if s.backend == "" {
		s.writer.WriteError(w, r, herodot.ErrInternalServerError.WithReason("Backend URL not configured"))
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, backend.QueryURL(s.backend, query), nil)
	if err != nil {
		s.writer.WriteError(w, r, herodot.ErrInternalServerError.WithReason("Failed to build backend request"))
		return
	}
	req.Header.Set("Accept", "application/json")
	if id := w.Header().Get(requestIDHeader); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("backend unreachable", zap.String("request_id", w.Header().Get(requestIDHeader)), zap.Error(err))
		s.writer.WriteError(w, r, herodot.ErrInternalServerError.WithReason("Failed to fetch data"))
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Warn("relay copy interrupted", zap.Error(err))
	}
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.writer.Write(w, r, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
