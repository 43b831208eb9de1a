// Package api provides the HTTP API for observing a running planet.
// Every endpoint is a read-only GET.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/planet-ai/internal/engine"
	"github.com/talgya/planet-ai/internal/persistence"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// StatusSource yields the live planet status.
type StatusSource interface {
	Status() engine.Status
}

// Journal is the read side of the run journal.
type Journal interface {
	RecentEvents(limit int) ([]persistence.EventRecord, error)
	DecisionStats(runID string) ([]persistence.DecisionStats, error)
}

// Server serves the planet state over HTTP.
type Server struct {
	Planet  StatusSource
	Journal Journal // nil disables the journal endpoints
	RunID   string
	Addr    string

	// Requests per second and burst allowed per client IP.
	RatePerSecond float64
	RateBurst     int
}

// Handler builds the routed, rate-limited handler.
func (s *Server) Handler() http.Handler {
	limiter := NewRateLimiter(s.RatePerSecond, s.RateBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", RateLimitMiddleware(limiter, s.handleStatus))
	mux.HandleFunc("GET /api/v1/events", RateLimitMiddleware(limiter, s.handleEvents))
	mux.HandleFunc("GET /api/v1/decisions", RateLimitMiddleware(limiter, s.handleDecisions))
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown", "error", err)
		}
	}()

	slog.Info("HTTP API starting", "addr", ln.Addr().String())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

type statusResponse struct {
	engine.Status
	RunID    string `json:"run_id,omitempty"`
	Uptime   string `json:"uptime"`
	Messages string `json:"messages"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Planet.Status()
	resp := statusResponse{
		Status:   st,
		RunID:    s.RunID,
		Messages: humanize.Comma(int64(st.Counters.Handled)),
	}
	if !st.StartedAt.IsZero() {
		resp.Uptime = strings.TrimSpace(humanize.RelTime(st.StartedAt, st.UpdatedAt, "", ""))
	}
	writeJSON(w, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "journal disabled", http.StatusServiceUnavailable)
		return
	}
	limit := defaultEventLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 || n > maxEventLimit {
			http.Error(w, fmt.Sprintf("limit must be 1-%d", maxEventLimit), http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := s.Journal.RecentEvents(limit)
	if err != nil {
		slog.Error("read journal", "error", err)
		http.Error(w, "journal read failed", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []persistence.EventRecord{}
	}
	writeJSON(w, events)
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "journal disabled", http.StatusServiceUnavailable)
		return
	}
	run := r.URL.Query().Get("run")
	if run == "" {
		run = s.RunID
	}
	stats, err := s.Journal.DecisionStats(run)
	if err != nil {
		slog.Error("read decision stats", "run", run, "error", err)
		http.Error(w, "journal read failed", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []persistence.DecisionStats{}
	}
	writeJSON(w, map[string]any{"run_id": run, "decisions": stats})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Warn("encode response", "error", err)
	}
}
