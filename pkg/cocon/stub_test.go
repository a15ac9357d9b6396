package cocon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/3P-Technologies/cocon-client/pkg/rest"
)

// testConfig returns fast timings for tests: millisecond backoff, no
// jitter, short recovery pauses.
func testConfig() *Config {
	return &Config{
		PollInterval:   10 * time.Millisecond,
		MaxRetries:     5,
		BackoffBase:    time.Millisecond,
		BackoffJitter:  -1,
		SessionTimeout: 2 * time.Second,
		NotifyTimeout:  2 * time.Second,
		QueueSize:      16,
	}
}

// stubAPI is a hand-rolled rest.API for tests that need failure modes the
// HTTP test server cannot script, such as a Send that hangs.
type stubAPI struct {
	mu           sync.Mutex
	connectCalls int
	sendCalls    []string

	connectErr error
	notifyFn   func(ctx context.Context, sessionID string) (rest.Result, error)
	sendFn     func(ctx context.Context, endpoint string, params map[string]string) (any, error)
}

func (s *stubAPI) Connect(ctx context.Context) (string, error) {
	s.mu.Lock()
	s.connectCalls++
	n := s.connectCalls
	err := s.connectErr
	s.mu.Unlock()

	if err != nil {
		return "", err
	}
	return fmt.Sprintf("session-%d", n), nil
}

func (s *stubAPI) Notify(ctx context.Context, sessionID string) (rest.Result, error) {
	if s.notifyFn != nil {
		return s.notifyFn(ctx, sessionID)
	}

	// Idle server: hold briefly, then end the poll cycle empty.
	select {
	case <-ctx.Done():
		return rest.Result{}, ctx.Err()
	case <-time.After(5 * time.Millisecond):
		return rest.Result{Status: rest.StatusTimeout, HTTPStatus: 408}, nil
	}
}

func (s *stubAPI) Send(ctx context.Context, endpoint string, params map[string]string) (any, error) {
	s.mu.Lock()
	s.sendCalls = append(s.sendCalls, endpoint)
	s.mu.Unlock()

	if s.sendFn != nil {
		return s.sendFn(ctx, endpoint, params)
	}
	return "OK", nil
}

func (s *stubAPI) ConnectCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectCalls
}

func (s *stubAPI) SendCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sendCalls))
	copy(out, s.sendCalls)
	return out
}

var _ rest.API = (*stubAPI)(nil)

// quietLogger drops log output so expected failures do not clutter test
// runs.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stopClient stops c at test cleanup, ignoring the loop error.
func stopClient(t *testing.T, c *Client) {
	t.Helper()
	t.Cleanup(func() { _ = c.Stop() })
}
