package domain

import (
	"errors"
	"fmt"
	"time"

	"nestling-health/audit/internal/fielddiff"
)

// AuditEvent is a single recorded change to a tracked health record.
// Events are append-only; once written they are never updated or deleted.
// Used for JSON transport (queue messages) and API responses.
type AuditEvent struct {
	ID         string              `json:"id"`
	EntityType EntityType          `json:"entity_type"`
	EntityID   string              `json:"entity_id"`
	UserID     string              `json:"user_id"`
	Action     Action              `json:"action"`
	Changes    fielddiff.ChangeSet `json:"changes"`
	Summary    string              `json:"summary"`
	RequestID  string              `json:"request_id,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// EntityType identifies which kind of health record an event describes.
type EntityType string

const (
	EntityTypeVisit   EntityType = "visit"
	EntityTypeIllness EntityType = "illness"
)

// Valid reports whether t is one of the recognized entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeVisit, EntityTypeIllness:
		return true
	}
	return false
}

// Action identifies what happened to the record.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Valid reports whether a is one of the recognized actions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// Validate validates the event for persistence. Returns an error describing
// the first validation failure.
func (e *AuditEvent) Validate() error {
	if e.ID == "" {
		return errors.New("id is required")
	}
	if !e.EntityType.Valid() {
		return fmt.Errorf("unknown entity type %q", e.EntityType)
	}
	if e.EntityID == "" {
		return errors.New("entity id is required")
	}
	if e.UserID == "" {
		return errors.New("user id is required")
	}
	if !e.Action.Valid() {
		return fmt.Errorf("unknown action %q", e.Action)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return nil
}
