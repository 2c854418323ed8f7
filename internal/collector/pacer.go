package collector

import (
	"context"
	"sync"
	"time"
)

// Pacer optionally holds requests back when the observed remaining quota
// runs low, and spaces calls by a minimum delay. Off unless wired in via
// WithPacer; the default posture is observe-and-log only.
type Pacer struct {
	mu        sync.Mutex
	remaining int
	resetAt   time.Time
	minDelay  time.Duration
	lastCall  time.Time
	floor     int
}

// NewPacer creates a pacer that blocks once fewer than floor requests
// remain in the window
func NewPacer(floor int, minDelay time.Duration) *Pacer {
	return &Pacer{
		remaining: 5000,
		resetAt:   time.Now().Add(time.Hour),
		minDelay:  minDelay,
		floor:     floor,
	}
}

// Wait blocks until another request is safe to send
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.remaining <= p.floor {
		wait := time.Until(p.resetAt)
		if wait > 0 {
			p.mu.Unlock()
			select {
			case <-ctx.Done():
				p.mu.Lock()
				return ctx.Err()
			case <-time.After(wait):
				p.mu.Lock()
			}
		}
		p.remaining = 5000
		p.resetAt = time.Now().Add(time.Hour)
	}

	if elapsed := time.Since(p.lastCall); elapsed < p.minDelay {
		p.mu.Unlock()
		select {
		case <-ctx.Done():
			p.mu.Lock()
			return ctx.Err()
		case <-time.After(p.minDelay - elapsed):
			p.mu.Lock()
		}
	}

	p.lastCall = time.Now()
	return nil
}

// Update records the rate window observed on an API response
func (p *Pacer) Update(remaining int, resetAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remaining = remaining
	p.resetAt = resetAt
}
