package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryReserveOnce(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	ok, err := l.Reserve(ctx, "tx1")
	if err != nil || !ok {
		t.Fatalf("first Reserve = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = l.Reserve(ctx, "tx1")
	if err != nil || ok {
		t.Fatalf("second Reserve = (%v, %v), want (false, nil)", ok, err)
	}

	e, err := l.Outcome(ctx, "tx1")
	if err != nil {
		t.Fatalf("Outcome error: %v", err)
	}
	if e.Outcome != OutcomePending || e.FirstSeenAt.IsZero() {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestMemoryReserveConcurrent(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	const n = 64
	var wg sync.WaitGroup
	wins := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Reserve(ctx, "tx1")
			if err != nil {
				t.Errorf("Reserve error: %v", err)
				return
			}
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for ok := range wins {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 reservation winner, got %d", winners)
	}
}

func TestMemoryRecordAndClear(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	if err := l.Record(ctx, "tx1", OutcomeActuated); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Record before Reserve: expected ErrNotFound, got %v", err)
	}

	if ok, _ := l.Reserve(ctx, "tx1"); !ok {
		t.Fatalf("expected reservation")
	}
	if err := l.Record(ctx, "tx1", OutcomeFailed); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	e, _ := l.Outcome(ctx, "tx1")
	if e.Outcome != OutcomeFailed {
		t.Fatalf("expected FAILED, got %s", e.Outcome)
	}

	// A failed transaction stays blocked until cleared.
	if ok, _ := l.Reserve(ctx, "tx1"); ok {
		t.Fatalf("failed transaction must not be re-reservable")
	}
	if err := l.Clear(ctx, "tx1"); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if ok, _ := l.Reserve(ctx, "tx1"); !ok {
		t.Fatalf("expected reservation after Clear")
	}

	if _, err := l.Outcome(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
	if err := l.Clear(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound clearing unknown id, got %v", err)
	}
}
