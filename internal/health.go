package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ProcessStats is the latest self-sample of the relay process.
type ProcessStats struct {
	CPUPercent float64 `json:"cpu"`
	RSSBytes   uint64  `json:"rss"`
	Status     string  `json:"status"`
}

// HealthState is the shared snapshot behind the liveness endpoint. The stats
// worker writes it periodically; the HTTP handler only reads.
type HealthState struct {
	mu          sync.RWMutex
	environment string
	startedAt   time.Time
	process     ProcessStats
}

func NewHealthState(environment string) *HealthState {
	return &HealthState{environment: environment, startedAt: time.Now()}
}

func (h *HealthState) SetProcess(stats ProcessStats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.process = stats
}

func (h *HealthState) snapshot() (string, time.Duration, ProcessStats) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.environment, time.Since(h.startedAt), h.process
}

// HealthHandler reports process status and the current environment name, plus
// live registry counts supplied by the caller.
func HealthHandler(state *HealthState, counts func() (connections int, rooms int)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		environment, uptime, process := state.snapshot()
		connections, rooms := counts()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"environment": environment,
			"uptime":      uptime.Round(time.Second).String(),
			"connections": connections,
			"rooms":       rooms,
			"process":     process,
		})
	}
}

// StartHealthServer exposes /healthz on its own listener, away from the
// public router.
func StartHealthServer(log *slog.Logger, port int, state *HealthState, counts func() (int, int)) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", HealthHandler(state, counts))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Health server stopped", "err", err)
		}
	}()
	return srv
}
