// Package server provides the local preview HTTP server.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blogbuilder/internal/render"
)

// Options configures the preview server.
type Options struct {
	Addr      string
	OutputDir string

	// Registry, when set, exposes Prometheus metrics on /metrics.
	Registry *prometheus.Registry
}

// Server serves the rendered site plus health and status endpoints.
type Server struct {
	opts Options
	srv  *http.Server
	ln   net.Listener

	mu        sync.RWMutex
	lastBuild *render.BuildReport
	started   time.Time
}

func New(opts Options) *Server {
	s := &Server{opts: opts, started: time.Now()}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(opts.OutputDir)))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	if opts.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	s.srv = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start binds the listen address and begins serving. Binding happens up
// front so port conflicts surface immediately rather than inside the
// serve goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.opts.Addr, err)
	}
	s.ln = ln

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server error", "error", err)
		}
	}()

	slog.Info("Preview server started", "addr", ln.Addr().String(), "dir", s.opts.OutputDir)
	return nil
}

// Addr returns the bound listen address, valid after Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.opts.Addr
	}
	return s.ln.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// RecordBuild updates the report returned by /api/status.
func (s *Server) RecordBuild(report *render.BuildReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBuild = report
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	report := s.lastBuild
	s.mu.RUnlock()

	if report == nil {
		writeJSON(w, http.StatusOK, map[string]any{"build": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"build": map[string]any{
			"id":        report.BuildID,
			"outcome":   string(report.Outcome),
			"finished":  report.End.Format(time.RFC3339),
			"duration":  report.Duration().String(),
			"published": report.Published,
			"drafts":    report.Drafts,
			"pages":     report.Pages,
			"warnings":  len(report.Warnings),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}
