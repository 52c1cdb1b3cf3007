// ABOUTME: Token-bucket rate limiter gating outbound embedding provider calls
// ABOUTME: Continuous refill at capacity/60000 tokens per millisecond
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter is a token bucket with capacity equal to the configured
// requests-per-minute. The refill-then-consume sequence runs under one
// mutex, so concurrent acquirers can never be issued more tokens than the
// capacity plus what accrued since the last refill.
type Limiter struct {
	mu          sync.Mutex
	capacity    float64
	refillPerMS float64
	tokens      float64
	lastRefill  time.Time
}

// New creates a limiter allowing requestsPerMinute calls, starting full
func New(requestsPerMinute int) (*Limiter, error) {
	if requestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", requestsPerMinute)
	}
	c := float64(requestsPerMinute)
	return &Limiter{
		capacity:    c,
		refillPerMS: c / 60000.0,
		tokens:      c,
		lastRefill:  time.Now(),
	}, nil
}

// Acquire blocks until a token is available or ctx is done. When the bucket
// is empty the caller reserves a token immediately (the balance goes
// negative) and sleeps for the time that token takes to accrue; the
// reservation is returned if the caller abandons the wait.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	l.refillLocked(time.Now())

	if l.tokens >= 1 {
		l.tokens--
		l.mu.Unlock()
		return nil
	}

	deficit := 1 - l.tokens
	wait := time.Duration(deficit / l.refillPerMS * float64(time.Millisecond))
	l.tokens--
	l.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.tokens++
		l.mu.Unlock()
		return ctx.Err()
	}
}

// Available returns the current token balance after a refill
func (l *Limiter) Available() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refillLocked(time.Now())
	return l.tokens
}

// refillLocked accrues tokens for elapsed wall time, capped at capacity.
// Callers must hold l.mu.
func (l *Limiter) refillLocked(now time.Time) {
	elapsedMS := float64(now.Sub(l.lastRefill)) / float64(time.Millisecond)
	if elapsedMS <= 0 {
		return
	}
	l.tokens += elapsedMS * l.refillPerMS
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
	l.lastRefill = now
}
