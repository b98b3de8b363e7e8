package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store is the part of ResultStore a Breaker wraps.
type Store interface {
	Get(ctx context.Context, hash string) ([]byte, bool, error)
	Set(ctx context.Context, hash string, data []byte) error
}

type breakerState string

const (
	stateClosed   breakerState = "closed"
	stateOpen     breakerState = "open"
	stateHalfOpen breakerState = "half_open"
)

// Breaker stops calling a failing Store for a cooldown that doubles with
// every consecutive failure, up to maxBackoff. While open, Get reports a
// miss and Set is dropped so requests fall through to the pipeline.
type Breaker struct {
	store       Store
	baseBackoff time.Duration
	maxBackoff  time.Duration
	now         func() time.Time

	mu       sync.Mutex
	state    breakerState
	failures int
	retryAt  time.Time
}

func NewBreaker(store Store, baseBackoff, maxBackoff time.Duration) *Breaker {
	if baseBackoff <= 0 {
		baseBackoff = 5 * time.Second
	}
	if maxBackoff < baseBackoff {
		maxBackoff = baseBackoff
	}
	return &Breaker{
		store:       store,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
		now:         time.Now,
		state:       stateClosed,
	}
}

func (b *Breaker) Get(ctx context.Context, hash string) ([]byte, bool, error) {
	if b.isOpen() {
		return nil, false, nil
	}
	data, ok, err := b.store.Get(ctx, hash)
	b.record(err)
	return data, ok, err
}

func (b *Breaker) Set(ctx context.Context, hash string, data []byte) error {
	if b.isOpen() {
		return nil
	}
	err := b.store.Set(ctx, hash, data)
	b.record(err)
	return err
}

// Open reports whether calls are currently short-circuited.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == stateOpen && b.now().Before(b.retryAt)
}

func (b *Breaker) isOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != stateOpen {
		return false
	}
	if b.now().Before(b.retryAt) {
		return true
	}
	b.state = stateHalfOpen
	log.Info().Msg("cache breaker moved to HALF-OPEN")
	return false
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		if b.state != stateClosed {
			log.Info().Msg("cache breaker CLOSED (reset)")
		}
		b.state = stateClosed
		b.failures = 0
		return
	}

	b.failures++
	backoff := b.baseBackoff
	for i := 1; i < b.failures; i++ {
		backoff *= 2
		if backoff > b.maxBackoff {
			backoff = b.maxBackoff
			break
		}
	}
	b.state = stateOpen
	b.retryAt = b.now().Add(backoff)
	log.Warn().
		Err(err).
		Dur("cooldown", backoff).
		Int("failures", b.failures).
		Time("retry_at", b.retryAt).
		Msg("cache breaker OPENED")
}

// Ping forwards to the wrapped store when it supports health checks.
func (b *Breaker) Ping(ctx context.Context) error {
	if p, ok := b.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
