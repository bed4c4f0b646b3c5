// Package server exposes the HTTP API: on-demand analysis, symbol search,
// stored analyses, watchlist management, and the WebSocket stream.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"stock-signals/internal/analyzer"
	"stock-signals/internal/gateway"
	"stock-signals/internal/logger"
	"stock-signals/internal/metrics"
	sqlitestore "stock-signals/internal/store/sqlite"
)

// Analyzer runs one analysis pass for a symbol.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (analyzer.Report, error)
}

// Server is the HTTP API server.
type Server struct {
	analyzer Analyzer
	store    *sqlitestore.Store
	hub      *gateway.Hub
	health   *metrics.HealthStatus
	log      *slog.Logger

	srv *http.Server
}

// New creates the API server. hub and health may be nil.
func New(addr string, a Analyzer, store *sqlitestore.Store, hub *gateway.Hub, health *metrics.HealthStatus) *Server {
	s := &Server{
		analyzer: a,
		store:    store,
		hub:      hub,
		health:   health,
		log:      slog.Default().With(slog.String("component", "server")),
	}

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/analyze/", s.handleAnalyze)
	mux.HandleFunc("/api/v1/search", s.handleSearch)
	mux.HandleFunc("/api/v1/symbols", s.handleSymbols)
	mux.HandleFunc("/api/v1/analyses", s.handleLatestAnalyses)
	mux.HandleFunc("/api/v1/analyses/", s.handleHistory)
	mux.HandleFunc("/api/v1/watchlist", s.handleWatchlist)
	mux.HandleFunc("/api/v1/watchlist/", s.handleWatchlistItem)

	if s.hub != nil {
		mux.HandleFunc("/api/v1/stream", s.hub.HandleWS)
	}

	if s.health != nil {
		mux.HandleFunc("/healthz", s.health.ServeHTTP)
	} else {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		})
	}

	return s.withRequestLog(mux)
}

// Start runs the server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info("listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error("server error", slog.String("err", err.Error()))
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// withRequestLog attaches a trace ID to each request and logs its outcome.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The WS endpoint hijacks the connection; wrapping the writer
		// would break the upgrade.
		if r.URL.Path == "/api/v1/stream" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ctx := logger.WithTraceID(r.Context(), logger.GenerateTraceID("req", start))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		attrs := []any{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("took", time.Since(start)),
		}
		attrs = append(attrs, logger.LogWithTrace(ctx)...)
		s.log.Info("request", attrs...)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
