package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nestling-health/audit/internal/access"
	"nestling-health/audit/internal/audit/domain"
	auditrepo "nestling-health/audit/internal/audit/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Handler serves the read API for recorded audit events.
type Handler struct {
	repo   auditrepo.Repository
	gate   *access.Gate
	source access.SubjectSource
}

// NewHandler returns a handler backed by the given repository, access gate,
// and subject source.
func NewHandler(repo auditrepo.Repository, gate *access.Gate, source access.SubjectSource) *Handler {
	return &Handler{repo: repo, gate: gate, source: source}
}

// listResponse is the envelope for paginated event listings.
type listResponse struct {
	Events []*domain.AuditEvent `json:"events"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// ListEntityEvents returns the audit history of one record, newest first.
// GET /api/v1/audit/{entityType}/{entityID}?limit=&offset=
func (h *Handler) ListEntityEvents(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityType(chi.URLParam(r, "entityType"))
	entityID := chi.URLParam(r, "entityID")
	if !entityType.Valid() {
		writeError(w, http.StatusBadRequest, "unknown entity type")
		return
	}

	if _, err := RequireViewer(r.Context(), h.source, h.gate, entityType, entityID); err != nil {
		writeViewerError(w, err)
		return
	}

	limit, offset, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.repo.ListByEntity(r.Context(), entityType, entityID, limit, offset)
	if err != nil {
		log.Printf("server: list audit events for %s/%s: %v", entityType, entityID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if events == nil {
		events = []*domain.AuditEvent{}
	}
	writeJSON(w, http.StatusOK, listResponse{Events: events, Limit: limit, Offset: offset})
}

// GetEvent returns a single audit event by id.
// GET /api/v1/audit/events/{id}
//
// The event is fetched first because the access check needs to know which
// record it belongs to.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("server: get audit event %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "audit event not found")
		return
	}

	if _, err := RequireViewer(r.Context(), h.source, h.gate, event.EntityType, event.EntityID); err != nil {
		writeViewerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// parsePage reads limit and offset from the query string. Missing values
// default to limit 50, offset 0; limit is capped at 200.
func parsePage(r *http.Request) (limit, offset int, err error) {
	limit = defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// writeViewerError maps RequireViewer failures onto HTTP status codes.
// Resolution failures are logged and reported as 500.
func writeViewerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "access denied")
	default:
		log.Printf("server: viewer check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
