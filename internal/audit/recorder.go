package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"nestling-health/audit/internal/audit/domain"
	auditrepo "nestling-health/audit/internal/audit/repository"
	"nestling-health/audit/internal/fielddiff"
)

// RequestIDExtractor returns the request id from the request context
// (e.g. HTTP middleware). chi's middleware.GetReqID satisfies it.
type RequestIDExtractor func(context.Context) string

// Recorder writes audit events for health-record lifecycle changes.
// Recording is best-effort: failures are logged and do not affect the caller.
type Recorder struct {
	repo          auditrepo.Repository
	requestIDFrom RequestIDExtractor
	maxValueLen   int
}

// NewRecorder returns a Recorder that persists to repo and uses requestIDFrom
// to stamp events with the originating request id.
// requestIDFrom may be nil; then events carry no request id.
// maxValueLen <= 0 falls back to DefaultMaxValueLen.
func NewRecorder(repo auditrepo.Repository, requestIDFrom RequestIDExtractor, maxValueLen int) *Recorder {
	if maxValueLen <= 0 {
		maxValueLen = DefaultMaxValueLen
	}
	return &Recorder{repo: repo, requestIDFrom: requestIDFrom, maxValueLen: maxValueLen}
}

// NewUpdateEvent builds the audit event for an update to a health record.
// current is the stored record and payload the incoming partial update; only
// keys present in payload are compared. Returns false when nothing material
// changed, in which case no event should be recorded.
func NewUpdateEvent(entityType domain.EntityType, entityID, userID string, current, payload map[string]any, opts fielddiff.Options) (*domain.AuditEvent, bool) {
	changes := fielddiff.Build(current, payload, opts)
	if changes.Len() == 0 {
		return nil, false
	}
	return &domain.AuditEvent{
		ID:         uuid.New().String(),
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Action:     domain.ActionUpdated,
		Changes:    changes,
		Summary:    fielddiff.Summary(changes, string(entityType)),
		CreatedAt:  time.Now().UTC(),
	}, true
}

// NewCreateEvent builds the audit event for a newly created health record.
// Create events carry no field changes, only a summary line.
func NewCreateEvent(entityType domain.EntityType, entityID, userID string) *domain.AuditEvent {
	return lifecycleEvent(domain.ActionCreated, "Created ", entityType, entityID, userID)
}

// NewDeleteEvent builds the audit event for a deleted health record.
func NewDeleteEvent(entityType domain.EntityType, entityID, userID string) *domain.AuditEvent {
	return lifecycleEvent(domain.ActionDeleted, "Deleted ", entityType, entityID, userID)
}

func lifecycleEvent(action domain.Action, verb string, entityType domain.EntityType, entityID, userID string) *domain.AuditEvent {
	return &domain.AuditEvent{
		ID:         uuid.New().String(),
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Action:     action,
		Summary:    verb + string(entityType),
		CreatedAt:  time.Now().UTC(),
	}
}

// RecordUpdate diffs current against payload and persists one update event.
// An update that changes nothing material records nothing. Best-effort:
// errors are logged and not returned.
func (r *Recorder) RecordUpdate(ctx context.Context, entityType domain.EntityType, entityID, userID string, current, payload map[string]any, opts fielddiff.Options) {
	event, ok := NewUpdateEvent(entityType, entityID, userID, current, payload, opts)
	if !ok {
		return
	}
	r.persist(ctx, event)
}

// RecordCreate persists one create event. Best-effort: errors are logged and not returned.
func (r *Recorder) RecordCreate(ctx context.Context, entityType domain.EntityType, entityID, userID string) {
	r.persist(ctx, NewCreateEvent(entityType, entityID, userID))
}

// RecordDelete persists one delete event. Best-effort: errors are logged and not returned.
func (r *Recorder) RecordDelete(ctx context.Context, entityType domain.EntityType, entityID, userID string) {
	r.persist(ctx, NewDeleteEvent(entityType, entityID, userID))
}

// Record persists a fully-built audit event, e.g. one received over the
// ingest API from a service that computed its own diff. Invalid events are
// logged and dropped. Best-effort: errors are logged and not returned.
func (r *Recorder) Record(ctx context.Context, e *domain.AuditEvent) {
	if e == nil {
		return
	}
	if err := e.Validate(); err != nil {
		log.Printf("audit: dropping invalid event: %v", err)
		return
	}
	r.persist(ctx, e)
}

// persist truncates the stored copy of the change values and writes the
// event. Truncation happens here, after diffing, so value comparison always
// sees the full values.
func (r *Recorder) persist(ctx context.Context, e *domain.AuditEvent) {
	if r.repo == nil {
		return
	}
	// A caller-supplied correlation id wins over the extracted one.
	if e.RequestID == "" && r.requestIDFrom != nil {
		e.RequestID = r.requestIDFrom(ctx)
	}
	e.Changes = TruncateChanges(e.Changes, r.maxValueLen)
	if err := r.repo.Create(ctx, e); err != nil {
		log.Printf("audit: failed to record %s %s/%s: %v", e.Action, e.EntityType, e.EntityID, err)
	}
}
