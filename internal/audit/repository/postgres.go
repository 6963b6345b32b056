package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"nestling-health/audit/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit event. The event must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.AuditEvent) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return fmt.Errorf("encode changes: %w", err)
	}
	rid := sql.NullString{String: e.RequestID, Valid: e.RequestID != ""}
	// changes goes over the wire as text so Postgres coerces it to the json
	// column itself; a []byte parameter would be sent as bytea.
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, entity_type, entity_id, user_id, action, changes, summary, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.EntityType, e.EntityID, e.UserID, e.Action, string(changes), e.Summary, rid, e.CreatedAt,
	)
	return err
}

// GetByID returns the audit event for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, entity_type, entity_id, user_id, action, changes, summary, request_id, created_at
		FROM audit_events
		WHERE id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// ListByEntity returns audit events for one entity, newest first, paginated
// by limit and offset. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string, limit, offset int) ([]*domain.AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, user_id, action, changes, summary, request_id, created_at
		FROM audit_events
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		entityType, entityID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*domain.AuditEvent, error) {
	var e domain.AuditEvent
	var changes []byte
	var rid sql.NullString
	if err := s.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.UserID, &e.Action, &changes, &e.Summary, &rid, &e.CreatedAt); err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return nil, fmt.Errorf("decode changes for event %s: %w", e.ID, err)
		}
	}
	if rid.Valid {
		e.RequestID = rid.String
	}
	return &e, nil
}
