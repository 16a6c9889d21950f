// Package health exposes the probe endpoints for the ratings sync service.
// Liveness only says the process is up; readiness is tied to the snapshot
// database, because a sync service that cannot reach its pool has nothing
// useful to do.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// snapshotPingTimeout bounds the readiness ping so a wedged pool turns into
// a 503 instead of a hanging probe.
const snapshotPingTimeout = 3 * time.Second

// SnapshotPinger is the slice of the snapshot database the probes need.
type SnapshotPinger interface {
	Ping(ctx context.Context) error
}

// LiveResponse is the liveness probe body.
type LiveResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ReadyResponse is the readiness probe body. Checks carries one entry per
// dependency; NextSync reports the scheduler's next planned sync when the
// server was wired with one.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	NextSync string            `json:"next_sync,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Server serves /live, /health, and /ready for the sync service.
type Server struct {
	service string
	port    string
	server  *http.Server
	logger  *logrus.Logger
	pool    SnapshotPinger
	nextRun func() time.Time

	mu    sync.RWMutex
	ready bool
}

// Config wires the probe server. Pool and NextRun are optional; a nil Pool
// skips the database check and a nil NextRun leaves next_sync out of the
// readiness body.
type Config struct {
	ServiceName string
	Port        string
	Logger      *logrus.Logger
	Pool        SnapshotPinger
	NextRun     func() time.Time
}

// NewServer builds a probe server that starts not-ready; the caller flips it
// once the scheduler is armed.
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == "" {
		port = os.Getenv("HEALTH_PORT")
	}
	if port == "" {
		port = "8080"
	}

	return &Server{
		service: cfg.ServiceName,
		port:    port,
		logger:  cfg.Logger,
		pool:    cfg.Pool,
		nextRun: cfg.NextRun,
	}
}

// SetReady flips the readiness gate.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady reports the readiness gate.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start serves the probes in the background and shuts down when the context
// is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"port":    s.port,
				"service": s.service,
			}).Info("Probe server starting")
		}
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.WithError(err).Error("Probe server error")
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown drains the probe server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("Probe server shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/health", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	return mux
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LiveResponse{
		Status:    "ok",
		Service:   s.service,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady gates on two things: the caller has armed the scheduler, and
// the snapshot pool answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	healthy := true

	if s.IsReady() {
		checks["scheduler"] = "armed"
	} else {
		healthy = false
		checks["scheduler"] = "not_armed"
	}

	if s.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), snapshotPingTimeout)
		defer cancel()

		if err := s.pool.Ping(ctx); err != nil {
			healthy = false
			checks["snapshot_db"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["snapshot_db"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.service,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}
	if s.nextRun != nil {
		if next := s.nextRun(); !next.IsZero() {
			response.NextSync = next.UTC().Format(time.RFC3339)
		}
	}

	status := http.StatusOK
	response.Status = "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		response.Status = "not_ready"
	}
	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
