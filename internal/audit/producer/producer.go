// Package producer defines the interface for emitting audit events to the queue (e.g. Kafka).
package producer

import (
	"context"

	"nestling-health/audit/internal/audit/domain"
)

// Producer emits audit events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single audit event. Implementations may block briefly; call from a goroutine if needed.
	// Returns an error only on write failure; callers typically log and ignore.
	Emit(ctx context.Context, event *domain.AuditEvent) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
