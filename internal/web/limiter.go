package web

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyConversions is returned when every conversion slot stayed
// occupied for the whole wait period. Clients should retry shortly.
var ErrTooManyConversions = errors.New("too many conversions in progress, please try again later")

const (
	defaultMaxConcurrent = 8
	defaultMaxWait       = 10 * time.Second
)

// ConversionLimiter bounds how many conversions run at once. Parsing holds
// whole documents in memory, so unbounded parallelism on large bodies can
// exhaust the process.
type ConversionLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewConversionLimiter allows at most maxConcurrent conversions. Callers
// that cannot get a slot within maxWait receive ErrTooManyConversions.
func NewConversionLimiter(maxConcurrent int, maxWait time.Duration) *ConversionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}

	return &ConversionLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller must Release it when done.
func (l *ConversionLimiter) Acquire(ctx context.Context) error {
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
		return ErrTooManyConversions
	}
}

// Release frees a slot taken by Acquire.
func (l *ConversionLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of conversions currently running.
func (l *ConversionLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no conversion is running or ctx is done.
// Used during graceful shutdown.
func (l *ConversionLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of the limiter, served by /api/status.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state.
func (l *ConversionLimiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
