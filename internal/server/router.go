package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nestling-health/audit/internal/access"
	"nestling-health/audit/internal/audit"
	"nestling-health/audit/internal/audit/producer"
	auditrepo "nestling-health/audit/internal/audit/repository"
	"nestling-health/audit/internal/security"
)

// Deps holds the dependencies for the HTTP API.
type Deps struct {
	// Repo is the audit event repository behind the read endpoints.
	Repo auditrepo.Repository
	// Gate decides who may view a record's audit history. If nil, all reads are denied.
	Gate *access.Gate
	// Source resolves authorization facts about the caller. If nil, subjects
	// carry only the user id and the policy sees no role or guardian facts.
	Source access.SubjectSource
	// Verifier validates Bearer tokens on /api/v1 routes.
	Verifier *security.Verifier
	// DB is pinged by /healthz (e.g. *sql.DB). If nil, healthz skips the DB ping.
	DB Pinger
	// Producer receives ingested events for the worker to persist. If nil,
	// ingested events are recorded synchronously through Recorder.
	Producer producer.Producer
	// Recorder is the synchronous fallback for ingested events.
	Recorder *audit.Recorder
}

// NewRouter builds the service router:
//
//	GET  /healthz                                  readiness (public)
//	POST /api/v1/audit/events                      ingest one audit event
//	GET  /api/v1/audit/events/{id}                 single audit event
//	GET  /api/v1/audit/{entityType}/{entityID}     audit history of one record
//
// The /api/v1 routes require a Bearer token; reads also pass the access gate.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	var policy PolicyChecker
	if deps.Gate != nil {
		policy = deps.Gate
	}
	health := NewHealthHandler(deps.DB, policy)
	r.Get("/healthz", health.Healthz)

	h := NewHandler(deps.Repo, deps.Gate, deps.Source)
	ingest := NewIngestHandler(deps.Producer, deps.Recorder)
	r.Route("/api/v1/audit", func(r chi.Router) {
		r.Use(RequireAuth(deps.Verifier))
		r.Post("/events", ingest.IngestEvent)
		r.Get("/events/{id}", h.GetEvent)
		r.Get("/{entityType}/{entityID}", h.ListEntityEvents)
	})

	return r
}
