// Package handlers implements the HTTP endpoints for serve mode.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker is implemented by components that can report readiness.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// ProbeResponse is the body returned by the health probes.
type ProbeResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthManager aggregates readiness checks from registered components.
type HealthManager struct {
	checkers map[string]HealthChecker
}

// NewHealthManager creates an empty health manager.
func NewHealthManager() *HealthManager {
	return &HealthManager{checkers: make(map[string]HealthChecker)}
}

// RegisterChecker adds a named readiness check.
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.checkers[name] = checker
}

// LivenessHandler reports that the process is running. It never consults
// registered checkers; a live process with a broken dependency is still live.
func (hm *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, http.StatusOK, ProbeResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}

// ReadinessHandler runs all registered checks and reports 503 when any fail.
func (hm *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(hm.checkers))
	healthy := true
	for name, checker := range hm.checkers {
		if err := checker.CheckHealth(ctx); err != nil {
			checks[name] = "unhealthy"
			healthy = false
		} else {
			checks[name] = "healthy"
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	writeProbe(w, code, ProbeResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

func writeProbe(w http.ResponseWriter, code int, response ProbeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(response)
}
