package repository

import (
	"context"

	"nestling-health/audit/internal/audit/domain"
)

// Repository defines persistence for audit events.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.AuditEvent, error)
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string, limit, offset int) ([]*domain.AuditEvent, error)
	Create(ctx context.Context, e *domain.AuditEvent) error
}
