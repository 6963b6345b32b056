package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"nestling-health/audit/internal/audit/domain"
)

var _ SubjectSource = (*StaticSource)(nil)
var _ SubjectSource = (*HTTPSource)(nil)

func TestStaticSource_KnownUser(t *testing.T) {
	src := &StaticSource{Subjects: map[string]Subject{
		"user-1": {Role: "parent", Guardian: true},
	}}

	sub, err := src.Resolve(context.Background(), "user-1", domain.EntityTypeVisit, "visit-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sub.UserID != "user-1" {
		t.Errorf("user id = %q, want %q", sub.UserID, "user-1")
	}
	if sub.Role != "parent" || !sub.Guardian {
		t.Errorf("subject = %+v, want parent guardian", sub)
	}
}

func TestStaticSource_UnknownUser(t *testing.T) {
	src := &StaticSource{Subjects: map[string]Subject{}}

	sub, err := src.Resolve(context.Background(), "stranger", domain.EntityTypeVisit, "visit-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sub.Role != "" || sub.Guardian {
		t.Errorf("unknown user resolved to %+v, want empty subject", sub)
	}
}

func TestStaticSource_NilTable(t *testing.T) {
	var src *StaticSource

	sub, err := src.Resolve(context.Background(), "user-1", domain.EntityTypeVisit, "visit-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sub.Guardian {
		t.Error("nil table should resolve to a non-guardian subject")
	}
}

func TestHTTPSource_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/authz/audit-viewer" {
			t.Errorf("path = %q, want /internal/authz/audit-viewer", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("user_id") != "user-1" || q.Get("entity_type") != "visit" || q.Get("entity_id") != "visit-9" {
			t.Errorf("query = %v, want user/entity params", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"user-1","role":"parent","guardian":true}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	sub, err := src.Resolve(context.Background(), "user-1", domain.EntityTypeVisit, "visit-9")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sub.Role != "parent" || !sub.Guardian {
		t.Errorf("subject = %+v, want parent guardian", sub)
	}
}

func TestHTTPSource_FillsUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"role":"admin","guardian":false}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	sub, err := src.Resolve(context.Background(), "user-7", domain.EntityTypeIllness, "illness-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sub.UserID != "user-7" {
		t.Errorf("user id = %q, want %q", sub.UserID, "user-7")
	}
}

func TestHTTPSource_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	if _, err := src.Resolve(context.Background(), "user-1", domain.EntityTypeVisit, "visit-1"); err == nil {
		t.Error("Resolve should fail on non-2xx response")
	}
}

func TestHTTPSource_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	if _, err := src.Resolve(context.Background(), "user-1", domain.EntityTypeVisit, "visit-1"); err == nil {
		t.Error("Resolve should fail on malformed response body")
	}
}

func TestHTTPSource_EmptyBaseURL(t *testing.T) {
	src := NewHTTPSource("")
	if _, err := src.Resolve(context.Background(), "user-1", domain.EntityTypeVisit, "visit-1"); err == nil {
		t.Error("Resolve should fail when no base URL is configured")
	}
}
