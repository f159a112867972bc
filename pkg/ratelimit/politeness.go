package ratelimit

import (
	"context"
	"sync"
	"time"
)

// slotBuffer is added when waiting for the oldest request to leave the
// window, so a slot is genuinely free when the caller wakes.
const slotBuffer = 100 * time.Millisecond

// Politeness throttles outbound requests against a single target site. It
// keeps a sliding one-minute window of request timestamps and additionally
// enforces a minimum inter-request delay derived from the per-minute budget,
// smoothing bursts even when the window is not full.
//
// Admission is serialized under a single mutex held for the duration of the
// wait, so slots are handed out in invocation order.
type Politeness struct {
	mu                sync.Mutex
	requestsPerMinute int
	window            time.Duration
	minDelay          time.Duration
	timestamps        []time.Time
	now               func() time.Time
}

// NewPoliteness creates a session-scoped politeness limiter for the given
// requests-per-minute budget. A non-positive budget is clamped to 1.
func NewPoliteness(requestsPerMinute int) *Politeness {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return &Politeness{
		requestsPerMinute: requestsPerMinute,
		window:            time.Minute,
		minDelay:          time.Minute / time.Duration(requestsPerMinute),
		timestamps:        make([]time.Time, 0, requestsPerMinute),
		now:               time.Now,
	}
}

// WaitForSlot suspends the caller until the next outbound request is
// allowed, or until the context is cancelled. It may block for up to the
// full window length.
func (p *Politeness) WaitForSlot(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()

	// Smooth bursts: keep the minimum spacing even under the window cap.
	if n := len(p.timestamps); n > 0 {
		if wait := p.minDelay - now.Sub(p.timestamps[n-1]); wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			now = p.now()
		}
	}

	p.prune(now)

	if len(p.timestamps) >= p.requestsPerMinute {
		oldest := p.timestamps[0]
		wait := oldest.Add(p.window).Sub(now) + slotBuffer
		if wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			now = p.now()
		}
		p.prune(now)
	}

	p.timestamps = append(p.timestamps, now)
	return nil
}

// prune drops timestamps that have left the sliding window.
func (p *Politeness) prune(now time.Time) {
	cutoff := now.Add(-p.window)
	i := 0
	for i < len(p.timestamps) && p.timestamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		copy(p.timestamps, p.timestamps[i:])
		p.timestamps = p.timestamps[:len(p.timestamps)-i]
	}
}

// sleep waits for the given duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
