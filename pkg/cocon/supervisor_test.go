package cocon

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/3P-Technologies/cocon-client/pkg/rest"
)

func TestSupervisorFailFast(t *testing.T) {
	// A poll loop death must take the command loop down with it: both
	// loops terminate, Done closes, and the poll loop's error wins.
	cfg := testConfig()
	cfg.MaxRetries = 1
	api := &stubAPI{connectErr: errors.New("server unreachable")}
	c := NewClient(Options{Transport: api, Config: cfg, Logger: quietLogger()})
	stopClient(t, c)

	require.NoError(t, c.Start())

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not terminate after poll loop death")
	}

	err := c.Wait()
	if err == nil {
		t.Fatal("Wait() = nil, want poll loop failure")
	}
	if !strings.Contains(err.Error(), "poll loop") {
		t.Errorf("Wait() error = %v, want it attributed to the poll loop", err)
	}
}

func TestSupervisorCleanShutdown(t *testing.T) {
	c := NewClient(Options{Transport: &stubAPI{}, Config: testConfig(), Logger: quietLogger()})
	require.NoError(t, c.Start())

	// Let both loops run a few cycles before stopping.
	time.Sleep(30 * time.Millisecond)

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error = %v, want nil", err)
	}
}

func TestSupervisorCommandLoopStopsWithPollLoop(t *testing.T) {
	// Once the supervisor has shut down, queued sends are refused rather
	// than accumulating against a loop that will never drain them.
	cfg := testConfig()
	cfg.MaxRetries = 1
	api := &stubAPI{connectErr: errors.New("server unreachable")}
	c := NewClient(Options{Transport: api, Config: cfg, Logger: quietLogger()})

	require.NoError(t, c.Start())
	<-c.Done()
	require.Error(t, c.Stop())

	if err := c.Send(context.Background(), "Any", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after supervisor death error = %v, want ErrClosed", err)
	}
}

func TestSupervisorNotifyErrorRestartsCycle(t *testing.T) {
	// A transport-level notify failure is transient: the loop reconnects
	// after the recovery pause instead of dying.
	failOnce := true
	api := &stubAPI{}
	api.notifyFn = func(ctx context.Context, sessionID string) (rest.Result, error) {
		if failOnce {
			failOnce = false
			return rest.Result{}, errors.New("connection reset")
		}
		select {
		case <-ctx.Done():
			return rest.Result{}, ctx.Err()
		case <-time.After(5 * time.Millisecond):
			return rest.Result{Status: rest.StatusTimeout, HTTPStatus: 408}, nil
		}
	}

	c := NewClient(Options{Transport: api, Config: testConfig(), Logger: quietLogger()})
	stopClient(t, c)
	require.NoError(t, c.Start())

	require.Eventually(t, func() bool { return api.ConnectCalls() == 2 },
		time.Second, 5*time.Millisecond, "poll cycle never restarted after notify failure")
}
