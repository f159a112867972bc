package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPolitenessFirstSlotImmediate(t *testing.T) {
	p := NewPoliteness(10)

	start := time.Now()
	if err := p.WaitForSlot(context.Background()); err != nil {
		t.Fatalf("WaitForSlot() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("first slot took %v, want immediate", elapsed)
	}
}

func TestPolitenessMinimumSpacing(t *testing.T) {
	// 600 rpm gives a 100ms minimum spacing, fast enough to observe in a
	// test without stalling the suite.
	p := NewPoliteness(600)
	ctx := context.Background()

	if err := p.WaitForSlot(ctx); err != nil {
		t.Fatalf("WaitForSlot() error = %v", err)
	}

	start := time.Now()
	if err := p.WaitForSlot(ctx); err != nil {
		t.Fatalf("WaitForSlot() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("second slot came after %v, want at least ~100ms spacing", elapsed)
	}
}

func TestPolitenessCancellation(t *testing.T) {
	p := NewPoliteness(1)
	ctx := context.Background()

	// Use up the only slot in the window.
	if err := p.WaitForSlot(ctx); err != nil {
		t.Fatalf("WaitForSlot() error = %v", err)
	}

	cancelled, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.WaitForSlot(cancelled)
	if err == nil {
		t.Fatal("WaitForSlot() should fail when the context expires mid-wait")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancellation took %v, want prompt return", elapsed)
	}
}

func TestPolitenessClampsBudget(t *testing.T) {
	p := NewPoliteness(0)
	if p.requestsPerMinute != 1 {
		t.Errorf("requestsPerMinute = %d, want clamped to 1", p.requestsPerMinute)
	}
	p = NewPoliteness(-5)
	if p.requestsPerMinute != 1 {
		t.Errorf("requestsPerMinute = %d, want clamped to 1", p.requestsPerMinute)
	}
}

func TestPolitenessPrune(t *testing.T) {
	p := NewPoliteness(10)
	now := time.Now()
	p.timestamps = []time.Time{
		now.Add(-2 * time.Minute),
		now.Add(-90 * time.Second),
		now.Add(-10 * time.Second),
	}

	p.prune(now)

	if len(p.timestamps) != 1 {
		t.Fatalf("prune left %d timestamps, want 1", len(p.timestamps))
	}
	if got := p.timestamps[0]; !got.Equal(now.Add(-10 * time.Second)) {
		t.Errorf("wrong timestamp survived: %v", got)
	}
}
