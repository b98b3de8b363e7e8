// Package limiter bounds how many documents are outlined at once by the
// HTTP service.
package limiter

import "context"

type Slots struct {
	sem chan struct{}
}

func New(max int) *Slots {
	if max <= 0 {
		max = 2
	}
	return &Slots{sem: make(chan struct{}, max)}
}

// Allow tries to reserve a slot without waiting.
// Returns a release function and true if allowed; otherwise a no-op and false.
func (s *Slots) Allow() (func(), bool) {
	select {
	case s.sem <- struct{}{}:
		return s.release, true
	default:
		return func() {}, false
	}
}

// Acquire waits for a slot until ctx is done.
func (s *Slots) Acquire(ctx context.Context) (func(), error) {
	select {
	case s.sem <- struct{}{}:
		return s.release, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	}
}

func (s *Slots) release() { <-s.sem }

// InFlight is the number of reserved slots.
func (s *Slots) InFlight() int { return len(s.sem) }

func (s *Slots) Cap() int { return cap(s.sem) }
