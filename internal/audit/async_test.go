package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"nestling-health/audit/internal/audit/domain"
)

// mockProducer implements producer.Producer for tests.
type mockProducer struct {
	mu      sync.Mutex
	events  []*domain.AuditEvent
	emitErr error
}

func (m *mockProducer) Emit(ctx context.Context, event *domain.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.emitErr
}

func (m *mockProducer) Close() error { return nil }

func (m *mockProducer) getEvents() []*domain.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	event := NewCreateEvent(domain.EntityTypeVisit, "visit-1", "user-1")

	// Should not panic
	EmitAsync(nil, context.Background(), event)
}

func TestEmitAsync_NilEvent(t *testing.T) {
	emitter := &mockProducer{}

	// Should not panic
	EmitAsync(emitter, context.Background(), nil)

	// Give goroutine time to run (if it starts)
	time.Sleep(10 * time.Millisecond)

	if got := emitter.getEvents(); len(got) != 0 {
		t.Errorf("expected 0 events, got %d", len(got))
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	emitter := &mockProducer{}
	event := NewCreateEvent(domain.EntityTypeVisit, "visit-1", "user-1")

	EmitAsync(emitter, context.Background(), event)

	// Wait for goroutine to complete
	time.Sleep(100 * time.Millisecond)

	got := emitter.getEvents()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].EntityID != "visit-1" {
		t.Errorf("entity id = %q, want %q", got[0].EntityID, "visit-1")
	}
}

func TestEmitAsync_UsesBackgroundContext(t *testing.T) {
	emitter := &mockProducer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel the request context immediately

	event := NewDeleteEvent(domain.EntityTypeIllness, "illness-1", "user-1")

	// Should still emit even though request context is cancelled
	EmitAsync(emitter, ctx, event)

	// Wait for goroutine to complete
	time.Sleep(100 * time.Millisecond)

	if got := emitter.getEvents(); len(got) != 1 {
		t.Errorf("expected 1 event (context.Background used), got %d", len(got))
	}
}

func TestEmitAsync_ErrorHandling(t *testing.T) {
	emitter := &mockProducer{emitErr: context.DeadlineExceeded}
	event := NewCreateEvent(domain.EntityTypeVisit, "visit-1", "user-1")

	// Should not panic on error; the error is logged, not surfaced
	EmitAsync(emitter, context.Background(), event)

	time.Sleep(100 * time.Millisecond)
}

func TestEmitAsync_ConcurrentEmits(t *testing.T) {
	emitter := &mockProducer{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(emitter, context.Background(), NewCreateEvent(domain.EntityTypeVisit, "visit-1", "user-1"))
		}()
	}
	wg.Wait()

	// Wait for all async emits to complete
	time.Sleep(200 * time.Millisecond)

	if got := emitter.getEvents(); len(got) != 10 {
		t.Errorf("expected 10 events, got %d", len(got))
	}
}
