package handlers

import (
	"encoding/json"
	"net/http"

	"pricing-chat/internal/logger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping() error
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	pinger Pinger
}

// NewHealthHandlers creates health handlers. The pinger may be nil when no
// database readiness check is wanted.
func NewHealthHandlers(pinger Pinger) *HealthHandlers {
	return &HealthHandlers{pinger: pinger}
}

// HealthHandler is the basic health endpoint
func (h *HealthHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// LivenessHandler reports that the process is up
func (h *HealthHandlers) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler reports whether the service can reach its database
func (h *HealthHandlers) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.pinger != nil {
		if err := h.pinger.Ping(); err != nil {
			logger.Log.WithError(err).Warn("Readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "reason": "database unreachable"})
			return
		}
	}

	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}
