package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Pinger is satisfied by storage.Store and *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 3 * time.Second

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	backends map[string]Pinger
	logger   *slog.Logger
}

func NewHealthHandler(backends map[string]Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{backends: backends, logger: logger}
}

type backendStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type readyzResponse struct {
	Status   string                   `json:"status"`
	Backends map[string]backendStatus `json:"backends,omitempty"`
}

// Livez reports that the process can serve HTTP.
func (h *HealthHandler) Livez(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz pings every backend concurrently. Any failure makes the service
// unready.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		resp = readyzResponse{Status: "ok"}
	)
	if len(h.backends) > 0 {
		resp.Backends = make(map[string]backendStatus, len(h.backends))
	}

	for name, p := range h.backends {
		wg.Go(func() {
			st := ping(ctx, p)
			mu.Lock()
			resp.Backends[name] = st
			mu.Unlock()
		})
	}
	wg.Wait()

	status := http.StatusOK
	for _, st := range resp.Backends {
		if st.Status != "ok" {
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		h.logger.Warn("readiness check failed", "backends", resp.Backends)
	}
	writeJSON(w, status, resp)
}

func ping(ctx context.Context, p Pinger) backendStatus {
	start := time.Now()
	err := p.Ping(ctx)
	st := backendStatus{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		st.Status = "error"
		st.Error = err.Error()
	}
	return st
}
