package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"nestling-health/audit/internal/access"
	"nestling-health/audit/internal/audit"
	"nestling-health/audit/internal/audit/producer"
	"nestling-health/audit/internal/audit/repository"
	"nestling-health/audit/internal/config"
	"nestling-health/audit/internal/db"
	"nestling-health/audit/internal/security"
	"nestling-health/audit/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if cfg.JWTPublicKey == "" {
		log.Fatal("JWT_PUBLIC_KEY is not set; point it at the family app's token verification key")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	repo := repository.NewPostgresRepository(conn)
	recorder := audit.NewRecorder(repo, middleware.GetReqID, cfg.AuditMaxValueLen)

	var emitter producer.Producer
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.AuditKafkaTopic)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		emitter = kp
		log.Printf("server: forwarding ingested events to Kafka topic %s", cfg.AuditKafkaTopic)
	} else {
		log.Println("server: KAFKA_BROKERS is not set; ingested events are recorded synchronously")
	}

	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	verifier := security.NewVerifier(pub, cfg.JWTIssuer, cfg.JWTAudience)

	policy, err := access.LoadPolicy(cfg.AuditAccessPolicy)
	if err != nil {
		log.Fatalf("access policy: %v", err)
	}
	gate := access.NewGate(policy)
	if err := gate.HealthCheck(context.Background()); err != nil {
		log.Fatalf("access policy: %v", err)
	}

	var source access.SubjectSource
	switch {
	case cfg.AuthzURL != "":
		source = access.NewHTTPSource(cfg.AuthzURL)
	case cfg.Env == "dev":
		source = devSource()
		log.Println("server: using static dev subject source")
	default:
		log.Println("server: AUTHZ_URL is not set; subjects carry no guardian or role facts")
	}

	router := server.NewRouter(server.Deps{
		Repo:     repo,
		Gate:     gate,
		Source:   source,
		Verifier: verifier,
		DB:       conn,
		Producer: emitter,
		Recorder: recorder,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if emitter != nil {
		// Give in-flight async emits time to finish before the writer goes away.
		time.Sleep(audit.ShutdownDrainDuration)
		if err := emitter.Close(); err != nil {
			log.Printf("kafka producer close: %v", err)
		}
	}
	log.Println("HTTP server stopped")
}

// devSource returns subjects matching the records cmd/seed inserts.
func devSource() *access.StaticSource {
	return &access.StaticSource{Subjects: map[string]access.Subject{
		"dev-parent-001": {UserID: "dev-parent-001", Role: "parent", Guardian: true},
		"dev-admin-001":  {UserID: "dev-admin-001", Role: "admin"},
		"dev-member-001": {UserID: "dev-member-001", Role: "member"},
	}}
}
