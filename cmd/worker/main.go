// Worker consumes audit events from Kafka and persists them to Postgres.
// Set KAFKA_BROKERS, AUDIT_KAFKA_TOPIC, KAFKA_GROUP_ID, and DATABASE_URL.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"nestling-health/audit/internal/audit"
	"nestling-health/audit/internal/audit/domain"
	"nestling-health/audit/internal/audit/repository"
	"nestling-health/audit/internal/config"
	"nestling-health/audit/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("worker: DATABASE_URL is required")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("worker: db: %v", err)
	}
	defer conn.Close()
	repo := repository.NewPostgresRepository(conn)

	maxValueLen := cfg.AuditMaxValueLen
	if maxValueLen <= 0 {
		maxValueLen = audit.DefaultMaxValueLen
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.AuditKafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s)", cfg.AuditKafkaTopic, cfg.KafkaGroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		// Bad messages are logged and skipped so one poison event cannot
		// stall the partition.
		var event domain.AuditEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("worker: decode audit event at offset %d: %v", msg.Offset, err)
			continue
		}
		if err := event.Validate(); err != nil {
			log.Printf("worker: invalid audit event %q: %v", event.ID, err)
			continue
		}
		event.Changes = audit.TruncateChanges(event.Changes, maxValueLen)

		createCtx, createCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := repo.Create(createCtx, &event); err != nil {
			log.Printf("worker: persist audit event %s: %v", event.ID, err)
		}
		createCancel()
	}
}
