package server

import (
	"context"
	"errors"
	"fmt"

	"nestling-health/audit/internal/access"
	"nestling-health/audit/internal/audit/domain"
)

var (
	// ErrUnauthenticated means no authenticated user id was found in context.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the policy denied the caller access to the record's history.
	ErrForbidden = errors.New("access denied")
)

// RequireViewer ensures the caller is authenticated and may view the audit
// history of the given record. Returns the user id on success; returns
// ErrUnauthenticated, ErrForbidden, or a wrapped resolution error on failure.
// A nil source yields a subject with no role or guardian facts, so only
// policies that allow by user id alone will pass. A nil gate denies everyone.
func RequireViewer(ctx context.Context, source access.SubjectSource, gate *access.Gate, entityType domain.EntityType, entityID string) (string, error) {
	userID, ok := GetUserID(ctx)
	if !ok || userID == "" {
		return "", ErrUnauthenticated
	}
	if gate == nil {
		return "", ErrForbidden
	}

	subject := &access.Subject{UserID: userID}
	if source != nil {
		s, err := source.Resolve(ctx, userID, entityType, entityID)
		if err != nil {
			return "", fmt.Errorf("resolve subject for user %s: %w", userID, err)
		}
		subject = s
	}

	if !gate.CanView(ctx, subject, entityType, entityID) {
		return "", ErrForbidden
	}
	return userID, nil
}
