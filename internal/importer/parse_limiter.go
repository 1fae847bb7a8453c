package importer

// parse_limiter.go implements concurrency control for parse jobs.
//
// Text extraction (OCR especially) is CPU-bound and can run for seconds,
// so parallel parses are capped with a semaphore. When all slots are
// occupied, new requests wait up to maxWait before failing with
// ErrTooManyParses. WaitForDrain blocks until all active parses complete,
// for graceful shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyParses is returned when all parse slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyParses = errors.New("too many concurrent parse jobs, please try again later")

// DefaultMaxConcurrentParses is the default limit for parallel parses.
const DefaultMaxConcurrentParses = 4

// DefaultParseWaitTime is how long to wait for a slot before rejecting.
const DefaultParseWaitTime = 30 * time.Second

// ParseLimiter controls concurrent parse processing using a semaphore.
type ParseLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewParseLimiter creates a limiter that allows at most maxConcurrent
// simultaneous parses.
func NewParseLimiter(maxConcurrent int, maxWait time.Duration) *ParseLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentParses
	}
	if maxWait <= 0 {
		maxWait = DefaultParseWaitTime
	}
	return &ParseLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire attempts to acquire a parse slot. Returns nil on success,
// ErrTooManyParses if the timeout expires. The caller MUST call Release
// when the parse completes (use defer).
func (l *ParseLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyParses
	}
}

// Release returns a parse slot to the pool.
func (l *ParseLimiter) Release() {
	select {
	case <-l.semaphore:
		l.mu.Lock()
		if l.active > 0 {
			l.active--
		}
		l.mu.Unlock()
	default:
	}
}

// Active returns the number of parses currently holding a slot.
func (l *ParseLimiter) Active() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until all active parses complete or ctx expires.
func (l *ParseLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
