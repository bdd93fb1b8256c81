// Package api serves the engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
)

const shutdownTimeout = 30 * time.Second

// Asker answers one question. *graph.Engine implements it.
type Asker interface {
	Run(ctx context.Context, question string, maxRetries int) (graph.Result, error)
}

// HTTPObserver records served requests.
type HTTPObserver interface {
	ObserveHTTP(route string, status int, elapsed time.Duration)
}

type Config struct {
	Port              string
	DefaultMaxRetries int
	// RunTimeout bounds each /ask run. Zero leaves it to the client.
	RunTimeout time.Duration
}

type Server struct {
	asker    Asker
	cfg      Config
	log      *zap.Logger
	obs      HTTPObserver
	gatherer prometheus.Gatherer
	router   *mux.Router
}

type Option func(*Server)

// WithMetrics records requests on obs and serves g at /metrics.
func WithMetrics(obs HTTPObserver, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.obs = obs
		s.gatherer = g
	}
}

func NewServer(a Asker, cfg Config, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	s := &Server{asker: a, cfg: cfg, log: log}
	for _, opt := range opts {
		opt(s)
	}

	router := mux.NewRouter()
	router.Use(s.instrument)
	router.HandleFunc("/ask", s.handleAsk).Methods("POST")
	router.HandleFunc("/health", handleHealth).Methods("GET")
	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.router = router
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on the configured port until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("API server starting", zap.String("addr", ln.Addr().String()))
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server exited")
	return nil
}

type AskRequest struct {
	Question   string `json:"question"`
	MaxRetries *int   `json:"max_retries,omitempty"`
}

type AskResponse struct {
	RunID    string   `json:"run_id"`
	Answer   string   `json:"answer"`
	Outcome  string   `json:"outcome"`
	Attempts int      `json:"attempts"`
	Trace    []string `json:"trace,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Stage   string `json:"stage,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "question is required"})
		return
	}
	maxRetries := s.cfg.DefaultMaxRetries
	if req.MaxRetries != nil {
		maxRetries = *req.MaxRetries
	}

	ctx := r.Context()
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	res, err := s.asker.Run(ctx, question, maxRetries)
	if err != nil {
		status, body := errorResponse(res, err)
		writeJSON(w, status, body)
		return
	}

	trace := make([]string, len(res.Trace))
	for i, n := range res.Trace {
		trace[i] = n.String()
	}
	writeJSON(w, http.StatusOK, AskResponse{
		RunID:    res.RunID,
		Answer:   res.Answer,
		Outcome:  string(res.Outcome),
		Attempts: res.Attempts,
		Trace:    trace,
	})
}

// errorResponse maps a run error onto a status: bad input is 400, a
// cancelled or timed out run is 504 and a failing collaborator is 502.
func errorResponse(res graph.Result, err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: err.Error(), Outcome: string(res.Outcome), RunID: res.RunID}
	var se *graph.StageError
	if errors.As(err, &se) {
		body.Stage = se.Stage.String()
	}

	switch {
	case errors.Is(err, graph.ErrInvalidRetries):
		return http.StatusBadRequest, body
	case res.Outcome == graph.Cancelled,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, body
	default:
		return http.StatusBadGateway, body
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		elapsed := time.Since(start)
		if s.obs != nil {
			s.obs.ObserveHTTP(route, sw.status, elapsed)
		}
		s.log.Debug("request served",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", sw.status),
			zap.Duration("elapsed", elapsed))
	})
}
