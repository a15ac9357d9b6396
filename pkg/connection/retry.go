package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrRetryExhausted is returned when an operation keeps failing and the
// retry budget is spent.
var ErrRetryExhausted = errors.New("max retries exceeded")

// Operation is a unit of work executed under the retry policy.
// It should honor ctx cancellation.
type Operation func(ctx context.Context) error

// Retrier executes operations with backoff between failed attempts.
// The zero budget (MaxRetries == 0) never executes the operation; a negative
// budget retries forever.
type Retrier struct {
	backoff    *Backoff
	maxRetries int
	logger     *slog.Logger
	onRetry    func(op string, attempt int, delay time.Duration, err error)
}

// RetrierConfig configures a Retrier.
type RetrierConfig struct {
	// MaxRetries bounds the number of attempts. Negative means unlimited.
	MaxRetries int

	// Backoff supplies retry delays. Nil uses the default policy.
	Backoff *Backoff

	// Logger receives a warning per retry. Nil uses slog.Default().
	Logger *slog.Logger
}

// NewRetrier creates a Retrier with the given configuration.
func NewRetrier(cfg RetrierConfig) *Retrier {
	if cfg.Backoff == nil {
		cfg.Backoff = NewBackoff()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Retrier{
		backoff:    cfg.Backoff,
		maxRetries: cfg.MaxRetries,
		logger:     cfg.Logger,
	}
}

// OnRetry sets a callback invoked before each retry wait, after the attempt
// has failed. Must be set before the Retrier is shared between goroutines.
func (r *Retrier) OnRetry(fn func(op string, attempt int, delay time.Duration, err error)) {
	r.onRetry = fn
}

// Do executes fn until it succeeds or the retry budget is spent.
// op names the operation in logs. Every failed attempt waits the backoff
// delay for its attempt number before the next try; cancellation of ctx is
// observed both inside fn and during the wait.
func (r *Retrier) Do(ctx context.Context, op string, fn Operation) error {
	var lastErr error

	attempt := 0
	for r.maxRetries < 0 || attempt < r.maxRetries {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err

		delay := r.backoff.Delay(attempt)
		r.logger.Warn("retrying operation",
			"op", op,
			"attempt", attempt+1,
			"delay", delay,
			"error", err)
		if r.onRetry != nil {
			r.onRetry(op, attempt+1, delay, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		attempt++
	}

	if lastErr != nil {
		return fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, attempt, lastErr)
	}
	return ErrRetryExhausted
}
