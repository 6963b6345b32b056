package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"nestling-health/audit/internal/audit"
	"nestling-health/audit/internal/audit/domain"
	"nestling-health/audit/internal/audit/producer"
	"nestling-health/audit/internal/fielddiff"
)

// IngestHandler accepts audit events over HTTP from services that computed
// their own field diff, and forwards them to the queue. producer may be nil;
// then events are recorded directly. recorder may also be nil; then events
// are dropped.
type IngestHandler struct {
	producer producer.Producer
	recorder *audit.Recorder
}

// NewIngestHandler returns an ingest handler that emits to p, falling back
// to recording through rec when p is nil.
func NewIngestHandler(p producer.Producer, rec *audit.Recorder) *IngestHandler {
	return &IngestHandler{producer: p, recorder: rec}
}

// ingestRequest is the write API payload. changes and summary are optional:
// created and deleted events carry no changes, and a missing summary is
// derived from the action.
type ingestRequest struct {
	EntityType domain.EntityType   `json:"entity_type"`
	EntityID   string              `json:"entity_id"`
	UserID     string              `json:"user_id"`
	Action     domain.Action       `json:"action"`
	Changes    fielddiff.ChangeSet `json:"changes"`
	Summary    string              `json:"summary"`
	RequestID  string              `json:"request_id"`
}

// ingestResponse acknowledges an accepted event.
type ingestResponse struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
}

// IngestEvent accepts one audit event from an internal service.
// POST /api/v1/audit/events
//
// The handler assigns the event id and timestamp; user_id defaults to the
// authenticated caller when the body omits it. 202 means accepted for
// processing, not persisted: emission stays fire-and-forget so a queue
// outage never fails the caller's own write.
func (h *IngestHandler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID, _ = GetUserID(r.Context())
	}

	event := &domain.AuditEvent{
		ID:         uuid.New().String(),
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		UserID:     userID,
		Action:     req.Action,
		Changes:    req.Changes,
		Summary:    req.Summary,
		RequestID:  req.RequestID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := event.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if event.Action == domain.ActionUpdated {
		// An update whose changes all cancel out records nothing, same as
		// the in-process write path.
		summary := fielddiff.Summary(event.Changes, string(event.EntityType))
		if summary == "" {
			writeJSON(w, http.StatusAccepted, ingestResponse{Status: "ignored"})
			return
		}
		if event.Summary == "" {
			event.Summary = summary
		}
	}
	if event.Summary == "" {
		switch event.Action {
		case domain.ActionCreated:
			event.Summary = "Created " + string(event.EntityType)
		case domain.ActionDeleted:
			event.Summary = "Deleted " + string(event.EntityType)
		}
	}

	if h.producer != nil {
		audit.EmitAsync(h.producer, r.Context(), event)
	} else if h.recorder != nil {
		h.recorder.Record(r.Context(), event)
	}

	writeJSON(w, http.StatusAccepted, ingestResponse{ID: event.ID, Status: "accepted"})
}
