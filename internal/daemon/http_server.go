package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/dhkang-dev/raceboard/internal/analyzer"
	"github.com/dhkang-dev/raceboard/internal/logfields"
	"github.com/dhkang-dev/raceboard/internal/metrics"
	"github.com/dhkang-dev/raceboard/internal/state"
	"github.com/dhkang-dev/raceboard/internal/version"
)

// HTTPServer serves the daemon's health, status, report, and metrics
// endpoints.
type HTTPServer struct {
	addr   string
	daemon *Daemon
	server *http.Server
	ln     net.Listener
}

// NewHTTPServer creates the HTTP server for the daemon.
func NewHTTPServer(addr string, d *Daemon) *HTTPServer {
	return &HTTPServer{addr: addr, daemon: d}
}

// Start binds the listen address and begins serving. Binding happens before
// the serve goroutine starts so an occupied port fails fast.
func (s *HTTPServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.addr, err)
	}
	s.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /report", s.handleReport)
	if s.daemon.registry != nil {
		mux.Handle("GET /metrics", metrics.HTTPHandler(s.daemon.registry))
	}

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", logfields.Error(err))
		}
	}()

	slog.Info("HTTP server listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts the server down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Addr returns the bound address, useful when listening on port 0.
func (s *HTTPServer) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Uptime:  time.Since(s.daemon.StartTime()).String(),
		Version: version.Version,
	})
}

type statusResponse struct {
	Uptime        string                    `json:"uptime"`
	Version       string                    `json:"version"`
	WatchDir      string                    `json:"watch_dir,omitempty"`
	LastReport    string                    `json:"last_report,omitempty"`
	OutcomeCounts map[string]map[string]int `json:"outcome_counts,omitempty"`
	RecentRuns    []state.Run               `json:"recent_runs,omitempty"`
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Uptime:     time.Since(s.daemon.StartTime()).String(),
		Version:    version.Version,
		WatchDir:   s.daemon.cfg.Daemon.WatchDir,
		LastReport: s.daemon.LastReportPath(),
	}

	if s.daemon.store != nil {
		if counts, err := s.daemon.store.OutcomeCounts(r.Context()); err == nil {
			resp.OutcomeCounts = counts
		}
		// ?type=analyze or ?type=upload narrows the run history.
		if runType := r.URL.Query().Get("type"); runType != "" {
			if runs, err := s.daemon.store.ByType(r.Context(), runType, 20); err == nil {
				resp.RecentRuns = runs
			}
		} else if runs, err := s.daemon.store.Recent(r.Context(), 20); err == nil {
			resp.RecentRuns = runs
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleReport renders the latest analysis as HTML.
func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request) {
	res := s.daemon.LastResult()
	if res == nil {
		http.Error(w, "no analysis has run yet", http.StatusNotFound)
		return
	}

	md := analyzer.MarkdownReport(res)
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(md), &buf); err != nil {
		http.Error(w, "report rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("JSON response encoding failed", logfields.Error(err))
	}
}
