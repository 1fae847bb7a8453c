package importer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseLimiterAcquireRelease(t *testing.T) {
	l := NewParseLimiter(2, 50*time.Millisecond)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if got := l.Active(); got != 2 {
		t.Errorf("active = %d, want 2", got)
	}

	l.Release()
	if got := l.Active(); got != 1 {
		t.Errorf("active after release = %d, want 1", got)
	}
	l.Release()
}

func TestParseLimiterRejectsWhenFull(t *testing.T) {
	l := NewParseLimiter(1, 20*time.Millisecond)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer l.Release()

	err := l.Acquire(context.Background())
	if !errors.Is(err, ErrTooManyParses) {
		t.Fatalf("err = %v, want ErrTooManyParses", err)
	}
}

func TestParseLimiterHonorsCallerCancellation(t *testing.T) {
	l := NewParseLimiter(1, time.Second)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestParseLimiterReleaseWithoutAcquire(t *testing.T) {
	l := NewParseLimiter(1, 20*time.Millisecond)

	// Must not panic or underflow the counter.
	l.Release()
	if got := l.Active(); got != 0 {
		t.Errorf("active = %d, want 0", got)
	}
}

func TestParseLimiterWaitForDrain(t *testing.T) {
	l := NewParseLimiter(1, 50*time.Millisecond)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	go func() {
		time.Sleep(150 * time.Millisecond)
		l.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.WaitForDrain(ctx); err != nil {
		t.Fatalf("WaitForDrain: %v", err)
	}
	if got := l.Active(); got != 0 {
		t.Errorf("active after drain = %d, want 0", got)
	}
}

func TestParseLimiterWaitForDrainTimeout(t *testing.T) {
	l := NewParseLimiter(1, 50*time.Millisecond)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := l.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
}
