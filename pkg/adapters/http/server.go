package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
)

// MaxBodyBytes bounds the size of an uploaded dialog.
const MaxBodyBytes = 8 << 20

// Compiler is the subset of arbor.Compiler the server needs.
type Compiler interface {
	CompileBytes(ctx context.Context, data []byte, baseDir string) (*domain.Result, error)
}

// CompileResponse is the body of a successful POST /compile.
type CompileResponse struct {
	Records     []domain.Record     `json:"records"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server exposes a Compiler over HTTP.
type Server struct {
	Compiler Compiler
	// BaseDir resolves <import> paths of uploaded dialogs.
	BaseDir string
	Logger  *slog.Logger
	metrics *metrics
}

// Option configures the handler.
type Option func(*Server)

// WithBaseDir sets the directory imports resolve against.
func WithBaseDir(dir string) Option {
	return func(s *Server) {
		s.BaseDir = dir
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler. Metrics are kept in a registry owned
// by the handler and served on /metrics.
func NewHandler(compiler Compiler, opts ...Option) http.Handler {
	s := &Server{
		Compiler: compiler,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	registry := prometheus.NewRegistry()
	s.metrics = newMetrics(registry)

	r := chi.NewRouter()
	r.Post("/compile", s.Compile)
	r.Post("/graph", s.Graph)
	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// compile reads the XML body and compiles it, writing an error response and
// returning nil on failure.
func (s *Server) compile(w http.ResponseWriter, r *http.Request, endpoint string) *domain.Result {
	start := time.Now()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.metrics.requests.WithLabelValues(endpoint, "invalid").Inc()
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		s.Logger.Warn("compile: body rejected", "err", err)
		return nil
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		s.metrics.requests.WithLabelValues(endpoint, "invalid").Inc()
		writeError(w, http.StatusBadRequest, "empty request body")
		return nil
	}

	res, err := s.Compiler.CompileBytes(r.Context(), body, s.BaseDir)
	s.metrics.duration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.requests.WithLabelValues(endpoint, "failed").Inc()
		writeError(w, statusFor(err), fmt.Sprintf("compile error: %v", err))
		s.Logger.Warn("compile failed", "err", err)
		return nil
	}

	s.metrics.requests.WithLabelValues(endpoint, "ok").Inc()
	s.metrics.records.Observe(float64(len(res.Records)))
	s.metrics.diagnostics.Add(float64(len(res.Diagnostics)))
	return res
}

func statusFor(err error) int {
	var nameErr *domain.NameError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrImport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrRepeatWithoutTarget),
		errors.As(err, &nameErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// Compile handles POST /compile. The body is the XML dialog.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	res := s.compile(w, r, "compile")
	if res == nil {
		return
	}

	resp := CompileResponse{
		Records:     res.Records,
		Diagnostics: res.Diagnostics,
	}
	if resp.Records == nil {
		resp.Records = []domain.Record{}
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []domain.Diagnostic{}
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		s.Logger.Error("compile response encode failed", "err", err)
	}
}

// Graph handles POST /graph, returning the Mermaid flowchart of the dialog.
func (s *Server) Graph(w http.ResponseWriter, r *http.Request) {
	res := s.compile(w, r, "graph")
	if res == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(res.Records, graph.OverlayFromDiagnostics(res.Diagnostics)))
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(arbor.Version),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
