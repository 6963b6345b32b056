// Package access decides who may view the audit history of a health record.
package access

import (
	"context"

	"nestling-health/audit/internal/audit/domain"
)

// Subject describes the caller asking to view audit history, as resolved
// against one specific record: the caller's role plus whether the caller is
// a guardian of the child the record belongs to.
type Subject struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	Guardian bool   `json:"guardian"`
}

// SubjectSource resolves a caller's relationship to a record. Production
// deployments resolve against the family app's authorization endpoint;
// tests and dev environments use StaticSource.
type SubjectSource interface {
	Resolve(ctx context.Context, userID string, entityType domain.EntityType, entityID string) (*Subject, error)
}
