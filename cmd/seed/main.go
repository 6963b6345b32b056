// seed inserts development sample audit events for local testing.
// Idempotent: skips inserts if the dev visit already has audit history.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"nestling-health/audit/internal/audit"
	"nestling-health/audit/internal/audit/domain"
	"nestling-health/audit/internal/audit/repository"
	"nestling-health/audit/internal/config"
	"nestling-health/audit/internal/db"
	"nestling-health/audit/internal/fielddiff"
)

const (
	devParentID  = "dev-parent-001"
	devVisitID   = "dev-visit-001"
	devIllnessID = "dev-illness-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	repo := repository.NewPostgresRepository(conn)
	ctx := context.Background()

	existing, err := repo.ListByEntity(ctx, domain.EntityTypeVisit, devVisitID, 1, 0)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if len(existing) > 0 {
		log.Println("Seed already applied (dev visit has audit history). Skipping.")
		os.Exit(0)
	}

	recorder := audit.NewRecorder(repo, nil, cfg.AuditMaxValueLen)

	// A checkup visit: created, then weight and notes corrected.
	recorder.RecordCreate(ctx, domain.EntityTypeVisit, devVisitID, devParentID)
	recorder.RecordUpdate(ctx, domain.EntityTypeVisit, devVisitID, devParentID,
		map[string]any{
			"weight": 12.0,
			"height": 86.5,
			"notes":  "6 month checkup",
		},
		map[string]any{
			"weight": 12.4,
			"notes":  "6 month checkup, all normal",
		},
		fielddiff.Options{FieldOrder: []string{"weight", "notes"}},
	)

	// An illness: created, symptoms refined, then removed as a duplicate.
	recorder.RecordCreate(ctx, domain.EntityTypeIllness, devIllnessID, devParentID)
	recorder.RecordUpdate(ctx, domain.EntityTypeIllness, devIllnessID, devParentID,
		map[string]any{
			"name":       "Cold",
			"symptoms":   []any{"cough"},
			"started_at": "2026-02-10",
		},
		map[string]any{
			"name":       "Common cold",
			"symptoms":   []any{"cough", "runny nose"},
			"started_at": "2026-02-10T08:00:00Z",
		},
		fielddiff.Options{FieldOrder: []string{"name", "symptoms", "started_at"}},
	)
	recorder.RecordDelete(ctx, domain.EntityTypeIllness, devIllnessID, devParentID)

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev audit history: GET /api/v1/audit/visit/%s as %s\n", devVisitID, devParentID)
}
