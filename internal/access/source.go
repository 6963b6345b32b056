package access

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nestling-health/audit/internal/audit/domain"
)

// StaticSource resolves subjects from a fixed in-memory table keyed by user
// id. Users absent from the table resolve to a subject with no role and no
// guardianship, so the default policy denies them.
type StaticSource struct {
	Subjects map[string]Subject
}

func (s *StaticSource) Resolve(ctx context.Context, userID string, entityType domain.EntityType, entityID string) (*Subject, error) {
	if s == nil || s.Subjects == nil {
		return &Subject{UserID: userID}, nil
	}
	sub, ok := s.Subjects[userID]
	if !ok {
		return &Subject{UserID: userID}, nil
	}
	sub.UserID = userID
	return &sub, nil
}

// HTTPSource resolves subjects by calling the family app's authorization
// endpoint: GET {base}/internal/authz/audit-viewer?user_id=&entity_type=&entity_id=
// returning a Subject as JSON.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource returns a source backed by the authorization endpoint at
// baseURL (e.g. http://app.internal:4000).
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Resolve queries the authorization endpoint for the caller's relationship
// to the record. Returns an error if the request fails or the endpoint
// returns non-2xx.
func (s *HTTPSource) Resolve(ctx context.Context, userID string, entityType domain.EntityType, entityID string) (*Subject, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("access: authz base URL is empty")
	}
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("entity_type", string(entityType))
	q.Set("entity_id", entityID)
	reqURL := s.baseURL + "/internal/authz/audit-viewer?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("access: authz endpoint returned %s", resp.Status)
	}
	var sub Subject
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("access: decode authz response: %w", err)
	}
	if sub.UserID == "" {
		sub.UserID = userID
	}
	return &sub, nil
}
