package limiter

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAllow(t *testing.T) {
	s := New(1)
	release, ok := s.Allow()
	if !ok || s.InFlight() != 1 {
		t.Fatalf("first Allow = %v, inflight %d", ok, s.InFlight())
	}
	if _, ok := s.Allow(); ok {
		t.Fatalf("second Allow succeeded past capacity")
	}
	release()
	if _, ok := s.Allow(); !ok {
		t.Errorf("Allow after release failed")
	}
}

func TestAcquireHonoursContext(t *testing.T) {
	s := New(1)
	if _, err := s.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire err = %v", err)
	}
}

func TestDefaultCapacity(t *testing.T) {
	if got := New(0).Cap(); got != 2 {
		t.Errorf("Cap = %d", got)
	}
}
