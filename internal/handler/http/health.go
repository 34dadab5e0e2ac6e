// Package http provides the REST surface of webwatch: health probes,
// metrics, middleware and the route registration for sources, projects
// and records.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// PingFunc checks a backend dependency. db.Stores.Ping satisfies it.
type PingFunc func(ctx context.Context) error

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HealthHandler reports storage connectivity with latency.
type HealthHandler struct {
	Ping PingFunc
	// Driver is reported as the check name ("mongo" or "postgres").
	Driver  string
	Version string
}

// ServeHTTP returns 200 when every check passes and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	name := "storage"
	if h.Driver != "" {
		name = h.Driver
	}

	checks := map[string]CheckStatus{}
	healthy := true
	if h.Ping == nil {
		checks[name] = CheckStatus{Status: "unhealthy", Message: "not configured"}
		healthy = false
	} else {
		start := time.Now()
		err := h.Ping(ctx)
		latency := time.Since(start)
		if err != nil {
			// 詳細はログのみ
			slog.Default().Warn("health: storage ping failed", slog.String("driver", h.Driver), slog.Any("error", err))
			checks[name] = CheckStatus{Status: "unhealthy", Message: "ping failed", Latency: latency.String()}
			healthy = false
		} else {
			checks[name] = CheckStatus{Status: "healthy", Latency: latency.String()}
		}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}
	code := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Default().Error("health: failed to encode response", slog.Any("error", err))
	}
}

// ReadyHandler answers readiness probes with a short storage ping.
type ReadyHandler struct {
	Ping PingFunc
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Ping == nil {
		http.Error(w, "storage not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.Ping(ctx); err != nil {
		http.Error(w, "storage not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler always returns 200 while the process can serve requests.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
