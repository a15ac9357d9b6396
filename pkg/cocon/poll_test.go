package cocon

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/3P-Technologies/cocon-client/internal/testserver"
	"github.com/3P-Technologies/cocon-client/pkg/connection"
	"github.com/3P-Technologies/cocon-client/pkg/rest"
)

// payloadRecorder collects dispatched notification payloads.
type payloadRecorder struct {
	mu       sync.Mutex
	payloads []map[string]any
	notify   chan struct{}
}

func newPayloadRecorder() *payloadRecorder {
	return &payloadRecorder{notify: make(chan struct{}, 64)}
}

func (r *payloadRecorder) handle(payload map[string]any) error {
	r.mu.Lock()
	r.payloads = append(r.payloads, payload)
	r.mu.Unlock()
	r.notify <- struct{}{}
	return nil
}

func (r *payloadRecorder) wait(t *testing.T) map[string]any {
	t.Helper()
	select {
	case <-r.notify:
	case <-time.After(time.Second):
		t.Fatal("no notification dispatched within 1s")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payloads[len(r.payloads)-1]
}

func TestPollDeliversNotifications(t *testing.T) {
	srv := testserver.New()
	defer srv.Close()

	rec := newPayloadRecorder()
	c := NewClient(Options{
		BaseURL: srv.URL(),
		Config:  testConfig(),
		Handler: rec.handle,
		Logger:  quietLogger(),
	})
	stopClient(t, c)
	require.NoError(t, c.Start())
	require.Eventually(t, func() bool { return srv.ConnectCount() == 1 },
		time.Second, 5*time.Millisecond)

	srv.QueueNotification(map[string]any{"Room": "Main"})
	got := rec.wait(t)
	require.Equal(t, "Main", got["Room"])

	srv.QueueNotification(map[string]any{"Microphone": "On"})
	got = rec.wait(t)
	require.Equal(t, "On", got["Microphone"])
}

func TestPollTimeoutNeverReconnects(t *testing.T) {
	srv := testserver.New()
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL(), Config: testConfig(), Logger: quietLogger()})
	stopClient(t, c)
	require.NoError(t, c.Start())
	require.Eventually(t, func() bool { return srv.ConnectCount() == 1 },
		time.Second, 5*time.Millisecond)

	// The test server holds each empty poll 25ms before answering 408, so
	// this window covers several empty cycles.
	time.Sleep(150 * time.Millisecond)

	if got := srv.ConnectCount(); got != 1 {
		t.Errorf("ConnectCount() = %d after empty polls, want 1", got)
	}
}

func TestPollInvalidSessionReconnects(t *testing.T) {
	srv := testserver.New()
	defer srv.Close()

	rec := newPayloadRecorder()
	c := NewClient(Options{
		BaseURL: srv.URL(),
		Config:  testConfig(),
		Handler: rec.handle,
		Logger:  quietLogger(),
	})
	stopClient(t, c)
	require.NoError(t, c.Start())
	require.Eventually(t, func() bool { return srv.ConnectCount() == 1 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, c.Subscribe(context.Background(), []string{"Room", "Microphone"}, true))
	firstSession := srv.LastSession()

	srv.InvalidateSessions()
	require.Eventually(t, func() bool { return srv.ConnectCount() == 2 },
		time.Second, 5*time.Millisecond, "client never reconnected after 400")

	// The full subscription set must be replayed against the new session
	// before polling resumes.
	require.Eventually(t, func() bool {
		replayed := 0
		for _, call := range srv.CommandsFor(rest.EndpointSubscribe) {
			if call.SessionID() == srv.LastSession() {
				replayed++
			}
		}
		return replayed == 2
	}, time.Second, 5*time.Millisecond, "subscriptions not replayed on new session")

	if srv.LastSession() == firstSession {
		t.Error("session id unchanged after reconnect")
	}

	// The refreshed session keeps delivering.
	srv.QueueNotification(map[string]any{"Room": "Back"})
	got := rec.wait(t)
	require.Equal(t, "Back", got["Room"])
}

func TestPollUnexpectedStatusKeepsSession(t *testing.T) {
	srv := testserver.New()
	defer srv.Close()

	rec := newPayloadRecorder()
	c := NewClient(Options{
		BaseURL: srv.URL(),
		Config:  testConfig(),
		Handler: rec.handle,
		Logger:  quietLogger(),
	})
	stopClient(t, c)
	require.NoError(t, c.Start())
	require.Eventually(t, func() bool { return srv.ConnectCount() == 1 },
		time.Second, 5*time.Millisecond)

	srv.QueueNotifyStatus(http.StatusInternalServerError)
	srv.QueueNotification(map[string]any{"Room": "Main"})

	// Receiving the queued payload proves the loop paused and re-polled
	// past the 500 instead of tearing the session down.
	got := rec.wait(t)
	require.Equal(t, "Main", got["Room"])

	if got := srv.ConnectCount(); got != 1 {
		t.Errorf("ConnectCount() = %d after unexpected status, want 1", got)
	}
}

func TestPollConnectExhaustionIsFatal(t *testing.T) {
	srv := testserver.New()
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 2
	c := NewClient(Options{BaseURL: srv.URL(), Config: cfg, Logger: quietLogger()})
	stopClient(t, c)

	srv.FailConnects(100)
	require.NoError(t, c.Start())

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not terminate after connect retry exhaustion")
	}

	err := c.Wait()
	if !errors.Is(err, connection.ErrRetryExhausted) {
		t.Errorf("Wait() error = %v, want ErrRetryExhausted", err)
	}
}
