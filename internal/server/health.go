package server

import (
	"context"
	"log"
	"net/http"
)

// Pinger reports database reachability (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker reports whether the access policy compiles and evaluates
// (e.g. the access gate).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves readiness for Kubernetes, load balancers, and CI.
type HealthHandler struct {
	db     Pinger
	policy PolicyChecker
}

// NewHealthHandler returns a health handler. A nil db skips the DB ping;
// a nil policy skips the policy check.
func NewHealthHandler(db Pinger, policy PolicyChecker) *HealthHandler {
	return &HealthHandler{db: db, policy: policy}
}

// Healthz returns 200 when all configured checks pass and 503 otherwise.
// Check failures are logged, never returned to the caller.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			log.Printf("healthz: db ping failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			log.Printf("healthz: policy check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
