package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stub mailer
// ---------------------------------------------------------------------------

type stubMailer struct {
	mu       sync.Mutex
	failures int // number of initial Send calls that fail
	calls    int
	sent     []domain.Message
	done     chan domain.Message
}

func newStubMailer(failures int) *stubMailer {
	return &stubMailer{failures: failures, done: make(chan domain.Message, 16)}
}

func (m *stubMailer) Send(_ context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	m.done <- msg
	return nil
}

func (m *stubMailer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var fastRetry = RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond}

func waitDelivered(t *testing.T, m *stubMailer) domain.Message {
	t.Helper()
	select {
	case msg := <-m.done:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
		return domain.Message{}
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestDispatcher_DeliversMessage(t *testing.T) {
	mailer := newStubMailer(0)
	d := NewDispatcher(2, mailer, fastRetry, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	defer func() {
		cancel()
		d.Wait()
	}()

	if err := d.Enqueue(ctx, domain.Message{To: []string{"alice@x.com"}, Subject: "hi"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	got := waitDelivered(t, mailer)
	if got.Subject != "hi" {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	mailer := newStubMailer(2)
	d := NewDispatcher(1, mailer, fastRetry, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	defer func() {
		cancel()
		d.Wait()
	}()

	if err := d.Enqueue(ctx, domain.Message{To: []string{"alice@x.com"}}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	waitDelivered(t, mailer)
	if n := mailer.callCount(); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestDeliver_GivesUpAfterMaxAttempts(t *testing.T) {
	mailer := newStubMailer(10)

	err := deliver(context.Background(), mailer, fastRetry, domain.Message{To: []string{"a@x.com"}}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if n := mailer.callCount(); n != fastRetry.MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", fastRetry.MaxAttempts, n)
	}
}

func TestDispatcher_FullQueueDoesNotBlock(t *testing.T) {
	d := NewDispatcher(1, newStubMailer(0), fastRetry, zerolog.Nop())
	ctx := context.Background()
	msg := domain.Message{To: []string{"alice@x.com"}}

	for i := 0; i < channelBuffer; i++ {
		if err := d.Enqueue(ctx, msg); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := d.Enqueue(ctx, msg); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcher_DrainsBufferedMessagesOnShutdown(t *testing.T) {
	mailer := newStubMailer(0)
	d := NewDispatcher(1, mailer, fastRetry, zerolog.Nop())
	for _, to := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if err := d.Enqueue(context.Background(), domain.Message{To: []string{to}}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if n := mailer.callCount(); n != 3 {
		t.Fatalf("expected 3 buffered messages delivered, got %d", n)
	}
}

func TestDispatcher_DrainIsBounded(t *testing.T) {
	mailer := newStubMailer(1000)
	d := NewDispatcher(1, mailer, RetryPolicy{MaxAttempts: 1000, InitialBackoff: 50 * time.Millisecond}, zerolog.Nop())
	d.drain = 20 * time.Millisecond
	if err := d.Enqueue(context.Background(), domain.Message{To: []string{"a@x.com"}}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	d.Start(ctx)
	d.Wait()

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("shutdown took %s", elapsed)
	}
}

func TestDispatcher_RejectsNoRecipients(t *testing.T) {
	d := NewDispatcher(1, newStubMailer(0), fastRetry, zerolog.Nop())
	if err := d.Enqueue(context.Background(), domain.Message{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestShardIndex_StablePerRecipient(t *testing.T) {
	d := NewDispatcher(8, newStubMailer(0), fastRetry, zerolog.Nop())

	a := d.shardIndex("alice@x.com")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("Alice@X.com"); got != a {
			t.Fatalf("shard changed: %d vs %d", got, a)
		}
	}
	if a < 0 || a >= 8 {
		t.Fatalf("shard out of range: %d", a)
	}
}
