package domain

import (
	"encoding/json"
	"testing"
	"time"

	"nestling-health/audit/internal/fielddiff"
)

func validEvent() *AuditEvent {
	var changes fielddiff.ChangeSet
	changes.Set("weight", fielddiff.FieldChange{Before: 12.0, After: 12.4})
	return &AuditEvent{
		ID:         "evt-1",
		EntityType: EntityTypeVisit,
		EntityID:   "visit-1",
		UserID:     "user-1",
		Action:     ActionUpdated,
		Changes:    changes,
		Summary:    "Updated weight",
		CreatedAt:  time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestEntityTypeValid(t *testing.T) {
	for _, et := range []EntityType{EntityTypeVisit, EntityTypeIllness} {
		if !et.Valid() {
			t.Errorf("EntityType(%q).Valid() = false, want true", et)
		}
	}
	for _, et := range []EntityType{"", "medication", "Visit"} {
		if et.Valid() {
			t.Errorf("EntityType(%q).Valid() = true, want false", et)
		}
	}
}

func TestActionValid(t *testing.T) {
	for _, a := range []Action{ActionCreated, ActionUpdated, ActionDeleted} {
		if !a.Valid() {
			t.Errorf("Action(%q).Valid() = false, want true", a)
		}
	}
	for _, a := range []Action{"", "archived", "UPDATED"} {
		if a.Valid() {
			t.Errorf("Action(%q).Valid() = true, want false", a)
		}
	}
}

func TestValidate_ValidEvent(t *testing.T) {
	if err := validEvent().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AuditEvent)
	}{
		{"missing id", func(e *AuditEvent) { e.ID = "" }},
		{"missing entity id", func(e *AuditEvent) { e.EntityID = "" }},
		{"missing user id", func(e *AuditEvent) { e.UserID = "" }},
		{"unknown entity type", func(e *AuditEvent) { e.EntityType = "medication" }},
		{"unknown action", func(e *AuditEvent) { e.Action = "archived" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validEvent()
			tc.mutate(e)
			if err := e.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidate_DefaultsCreatedAt(t *testing.T) {
	e := validEvent()
	e.CreatedAt = time.Time{}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be defaulted when zero")
	}
}

func TestAuditEvent_JSONRoundTrip(t *testing.T) {
	e := validEvent()
	e.RequestID = "req-9"

	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got AuditEvent
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.ID != e.ID || got.EntityType != e.EntityType || got.EntityID != e.EntityID {
		t.Errorf("identity fields = %q/%q/%q, want %q/%q/%q",
			got.ID, got.EntityType, got.EntityID, e.ID, e.EntityType, e.EntityID)
	}
	if got.Action != e.Action || got.UserID != e.UserID || got.RequestID != e.RequestID {
		t.Errorf("actor fields = %q/%q/%q, want %q/%q/%q",
			got.Action, got.UserID, got.RequestID, e.Action, e.UserID, e.RequestID)
	}
	if got.Summary != e.Summary {
		t.Errorf("Summary = %q, want %q", got.Summary, e.Summary)
	}
	if got.Changes.Len() != 1 {
		t.Fatalf("Changes.Len() = %d, want 1", got.Changes.Len())
	}
	fc, ok := got.Changes.Get("weight")
	if !ok {
		t.Fatal("Changes missing weight entry")
	}
	if fc.Before != 12.0 || fc.After != 12.4 {
		t.Errorf("weight change = %v -> %v, want 12 -> 12.4", fc.Before, fc.After)
	}
}

func TestAuditEvent_JSONOmitsEmptyRequestID(t *testing.T) {
	raw, err := json.Marshal(validEvent())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := m["request_id"]; ok {
		t.Error("request_id should be omitted when empty")
	}
}
