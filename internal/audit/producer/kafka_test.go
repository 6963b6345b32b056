package producer

import (
	"context"
	"testing"

	"nestling-health/audit/internal/audit/domain"
)

func TestNewKafkaProducer_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaProducer(nil, "audit-events")
	if err == nil {
		t.Fatal("expected error for empty brokers, got nil")
	}
}

func TestNewKafkaProducer_RequiresTopic(t *testing.T) {
	_, err := NewKafkaProducer([]string{"localhost:9092"}, "")
	if err == nil {
		t.Fatal("expected error for empty topic, got nil")
	}
}

func TestNewKafkaProducer_Valid(t *testing.T) {
	p, err := NewKafkaProducer([]string{"localhost:9092"}, "audit-events")
	if err != nil {
		t.Fatalf("NewKafkaProducer() error = %v", err)
	}
	if p.writer == nil {
		t.Fatal("expected writer to be configured")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestKafkaProducer_EmitNilSafe(t *testing.T) {
	var p *KafkaProducer
	if err := p.Emit(context.Background(), &domain.AuditEvent{}); err != nil {
		t.Fatalf("Emit() on nil producer error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() on nil producer error = %v", err)
	}
}

func TestKafkaProducer_EmitNilEvent(t *testing.T) {
	p := &KafkaProducer{}
	if err := p.Emit(context.Background(), nil); err != nil {
		t.Fatalf("Emit() with nil event error = %v", err)
	}
}
