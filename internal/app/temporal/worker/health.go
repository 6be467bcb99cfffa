package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthStatus represents the worker health status
type HealthStatus struct {
	WorkerID     string             `json:"worker_id"`
	TaskQueue    string             `json:"task_queue"`
	Status       string             `json:"status"`
	Uptime       string             `json:"uptime"`
	StartedAt    time.Time          `json:"started_at"`
	Dependencies []ConnectionStatus `json:"dependencies"`
}

// ConnectionStatus represents a connection status
type ConnectionStatus struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// HealthServer serves /health, /live, /ready and /metrics for a worker.
type HealthServer struct {
	workerID  string
	taskQueue string
	startedAt time.Time
	gatherer  prometheus.Gatherer
	logger    *zap.Logger

	mu     sync.RWMutex
	checks map[string]Check
}

func NewHealthServer(workerID, taskQueue string, gatherer prometheus.Gatherer, logger *zap.Logger) *HealthServer {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthServer{
		workerID:  workerID,
		taskQueue: taskQueue,
		startedAt: time.Now(),
		gatherer:  gatherer,
		logger:    logger,
		checks:    make(map[string]Check),
	}
}

// AddCheck registers a dependency checked by /health and /ready.
func (h *HealthServer) AddCheck(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Status checks every dependency.
func (h *HealthServer) Status(ctx context.Context) HealthStatus {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	status := HealthStatus{
		WorkerID:  h.workerID,
		TaskQueue: h.taskQueue,
		Status:    "healthy",
		StartedAt: h.startedAt,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	}
	for _, name := range names {
		h.mu.RLock()
		check := h.checks[name]
		h.mu.RUnlock()

		dep := ConnectionStatus{Name: name, Connected: true}
		if err := check(ctx); err != nil {
			dep.Connected = false
			dep.Error = err.Error()
			status.Status = "unhealthy"
		}
		status.Dependencies = append(status.Dependencies, dep)
	}
	return status
}

// Handler returns the health routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := h.Status(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if status.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})

	// Liveness
	mux.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if h.Status(r.Context()).Status == "healthy" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("READY"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("NOT READY"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start serves the health routes on addr in the background.
func (h *HealthServer) Start(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// the worker keeps running without its health server
			h.logger.Error("Health server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return srv
}
