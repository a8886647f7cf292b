package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Spacer enforces a minimum interval between consecutive calls to the same
// service. The interval runs from the end of one call to the start of the
// next. Services are spaced independently.
type Spacer struct {
	clock     Clock
	fallback  time.Duration
	intervals map[string]time.Duration
	lastCall  map[string]time.Time
	mu        sync.Mutex
}

// NewSpacer creates a spacer using interval for services without their own
func NewSpacer(clock Clock, interval time.Duration) *Spacer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Spacer{
		clock:     clock,
		fallback:  interval,
		intervals: make(map[string]time.Duration),
		lastCall:  make(map[string]time.Time),
	}
}

// SetInterval sets the minimum interval for service
func (s *Spacer) SetInterval(service string, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intervals[service] = interval
}

// Interval returns the minimum interval for service
func (s *Spacer) Interval(service string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval(service)
}

func (s *Spacer) interval(service string) time.Duration {
	if d, ok := s.intervals[service]; ok {
		return d
	}
	return s.fallback
}

// Wait blocks for whatever remains of the interval since the last call to
// service ended.
func (s *Spacer) Wait(ctx context.Context, service string) error {
	s.mu.Lock()
	last, seen := s.lastCall[service]
	remaining := s.interval(service)
	s.mu.Unlock()

	if !seen {
		return ctx.Err()
	}
	remaining -= s.clock.Now().Sub(last)
	if remaining <= 0 {
		return ctx.Err()
	}
	return s.clock.Sleep(ctx, remaining)
}

// Mark records that a call to service has just completed
func (s *Spacer) Mark(service string) {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCall[service] = now
}

// LastCall returns when the last call to service completed
func (s *Spacer) LastCall(service string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastCall[service]
	return t, ok
}

// Reset forgets every recorded call
func (s *Spacer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCall = make(map[string]time.Time)
}

// Clock returns the clock the spacer measures with
func (s *Spacer) Clock() Clock {
	return s.clock
}
