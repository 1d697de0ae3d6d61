// Package dashboard serves the live results dashboard: a single HTML page
// that polls a JSON endpoint for the latest persisted results. The server
// never caches report data; every /api/data request re-reads the reports
// directory so a run finishing mid-session shows up on the next poll.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/adityadwic/mongo-acceptor/reporting"
	"github.com/adityadwic/mongo-acceptor/templates"
)

// Server is the dashboard HTTP server.
type Server struct {
	reportsDir string
	addr       string
	log        *zap.Logger
	srv        *http.Server
}

// NewServer creates a dashboard server reading from reportsDir.
func NewServer(reportsDir, addr string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{reportsDir: reportsDir, addr: addr, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/data", s.handleData).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the configured handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("dashboard listening",
		zap.String("addr", s.addr),
		zap.String("reports_dir", s.reportsDir))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(templates.DashboardHTML)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	data, err := reporting.LoadLatest(s.reportsDir)
	if err != nil {
		s.log.Error("failed to load report data", zap.Error(err))
		http.Error(w, "failed to load report data", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode report data", zap.Error(err))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("OK"))
}
