// Package web exposes the scan pipeline over HTTP: a JSON scan
// endpoint, a Server-Sent Events stream for live progress, and export
// endpoints for finished results.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"depscan/internal/github"
	"depscan/internal/report"
	"depscan/internal/scanner"
	"depscan/internal/telemetry"
)

// ScanSource starts scans and yields their event streams.
type ScanSource interface {
	Scan(ctx context.Context, owner, repo string) <-chan scanner.Event
}

// RepoSource resolves repository URLs to display metadata.
type RepoSource interface {
	RepoInfo(ctx context.Context, repoURL string) github.RepoInfo
}

// Server handles the scan API.
type Server struct {
	scans   ScanSource
	repos   RepoSource
	metrics *telemetry.Metrics
	port    int
}

// NewServer creates a new web server.
func NewServer(scans ScanSource, repos RepoSource, metrics *telemetry.Metrics, port int) *Server {
	return &Server{scans: scans, repos: repos, metrics: metrics, port: port}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/repo-info", s.handleRepoInfo)
	mux.HandleFunc("/api/scan", s.handleScan)
	mux.HandleFunc("/api/scan-stream", s.handleScanStream)
	mux.HandleFunc("/api/export/json", s.handleExportJSON)
	mux.HandleFunc("/api/export/csv", s.handleExportCSV)
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
		return s.metrics.RequestTrackingMiddleware(mux)
	}
	return mux
}

// Start starts the HTTP server. Bound to localhost; put a reverse
// proxy in front for anything else.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	slog.Info("starting scan server", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

type scanRequest struct {
	URL string `json:"url"`
}

// parseScanRequest accepts the repository URL from a JSON body or the
// url query parameter.
func (s *Server) parseScanRequest(r *http.Request) (owner, repo, rawURL string, err error) {
	rawURL = r.URL.Query().Get("url")
	if rawURL == "" && r.Body != nil {
		var req scanRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr == nil {
			rawURL = req.URL
		}
	}
	if rawURL == "" {
		return "", "", "", fmt.Errorf("missing repository url")
	}
	owner, repo, ok := github.ParseRepoURL(rawURL)
	if !ok {
		return "", "", rawURL, fmt.Errorf("unsupported repository url: %s", rawURL)
	}
	return owner, repo, rawURL, nil
}

func (s *Server) handleRepoInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, _, rawURL, err := s.parseScanRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.repos.RepoInfo(r.Context(), rawURL))
}

// handleScan runs a scan to completion and returns the final event.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	owner, repo, _, err := s.parseScanRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if s.metrics != nil {
		s.metrics.ScansStarted.Inc()
	}
	start := time.Now()

	var final scanner.Event
	for ev := range s.scans.Scan(r.Context(), owner, repo) {
		final = ev
	}
	s.recordScan(start, final)

	if final.Type == scanner.EventError {
		w.WriteHeader(http.StatusBadGateway)
		writeJSON(w, final)
		return
	}
	writeJSON(w, final)
}

// handleScanStream forwards the event stream as Server-Sent Events. A
// start event carrying the repository metadata is sent first.
func (s *Server) handleScanStream(w http.ResponseWriter, r *http.Request) {
	owner, repo, rawURL, err := s.parseScanRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sendSSE(w, map[string]any{
		"type": "start",
		"repo": s.repos.RepoInfo(r.Context(), rawURL),
	})
	flusher.Flush()

	if s.metrics != nil {
		s.metrics.ScansStarted.Inc()
	}
	start := time.Now()

	var final scanner.Event
	for ev := range s.scans.Scan(r.Context(), owner, repo) {
		final = ev
		sendSSE(w, ev)
		flusher.Flush()
	}
	s.recordScan(start, final)
}

// handleExportJSON re-encodes a posted result as a JSON download.
func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	result, ok := decodeResult(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="scan-results.json"`)
	if err := report.WriteJSON(w, result); err != nil {
		slog.Error("json export failed", "error", err)
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := decodeResult(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="scan-results.csv"`)
	if err := report.WriteCSV(w, result); err != nil {
		slog.Error("csv export failed", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) recordScan(start time.Time, final scanner.Event) {
	if s.metrics == nil {
		return
	}
	failed := final.Type != scanner.EventComplete
	deps := 0
	bySeverity := map[string]int{}
	if final.Result != nil {
		deps = final.Result.Summary.TotalDependencies
		for _, v := range final.Result.Vulnerabilities {
			bySeverity[string(v.Severity)]++
		}
	}
	s.metrics.RecordScan(start, failed, deps, bySeverity)
}

func decodeResult(w http.ResponseWriter, r *http.Request) (*scanner.Result, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	var result scanner.Result
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		http.Error(w, "invalid result payload", http.StatusBadRequest)
		return nil, false
	}
	return &result, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func sendSSE(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("event encode failed", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
