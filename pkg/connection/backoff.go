package connection

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Backoff policy defaults.
const (
	// DefaultBase is the initial retry delay before doubling.
	DefaultBase = 500 * time.Millisecond

	// DefaultJitter is the maximum random delay added to each attempt.
	DefaultJitter = 1 * time.Second

	// MaxDelay is the cap applied to the jittered delay.
	MaxDelay = 30 * time.Second
)

// Backoff calculates capped exponential retry delays with jitter.
type Backoff struct {
	mu sync.Mutex

	// Configuration
	base   time.Duration
	jitter time.Duration
	max    time.Duration

	// Random source for jitter
	rng *rand.Rand
}

// NewBackoff creates a backoff calculator with default settings.
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{})
}

// BackoffConfig allows customizing backoff parameters.
type BackoffConfig struct {
	Base   time.Duration
	Jitter time.Duration
	Max    time.Duration
}

// NewBackoffWithConfig creates a backoff calculator with custom settings.
// Zero or negative fields fall back to the defaults.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Base <= 0 {
		cfg.Base = DefaultBase
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	} else if cfg.Jitter == 0 {
		cfg.Jitter = DefaultJitter
	}
	if cfg.Max <= 0 {
		cfg.Max = MaxDelay
	}

	return &Backoff{
		base:   cfg.Base,
		jitter: cfg.Jitter,
		max:    cfg.Max,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Delay returns the jittered delay for the given attempt (counting from 0).
// The result is always in [base*2^attempt, base*2^attempt+jitter], capped at
// the maximum. Delay has no side effects beyond advancing the random source.
func (b *Backoff) Delay(attempt int) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp := float64(b.base) * math.Pow(2, float64(attempt))
	if exp >= float64(b.max) {
		return b.max
	}

	d := time.Duration(exp)
	if b.jitter > 0 {
		d += time.Duration(b.rng.Float64() * float64(b.jitter))
	}
	if d > b.max {
		d = b.max
	}
	return d
}

// Base returns the configured base delay.
func (b *Backoff) Base() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.base
}
