package cocon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/3P-Technologies/cocon-client/pkg/connection"
	"github.com/3P-Technologies/cocon-client/pkg/dispatch"
	"github.com/3P-Technologies/cocon-client/pkg/log"
	"github.com/3P-Technologies/cocon-client/pkg/rest"
	"github.com/3P-Technologies/cocon-client/pkg/subscription"
)

// Command is one queued command: an endpoint name (without the leading
// slash) and its query parameters. The session id parameter is filled in
// at send time so commands survive reconnects.
type Command struct {
	Endpoint string
	Params   map[string]string
}

// Options configures a Client.
type Options struct {
	// Host is the CoCon server hostname or IP address.
	Host string

	// Port is the CoCon server port (default: 8890).
	Port int

	// BaseURL overrides Host/Port with a full base URL. Used by tests.
	BaseURL string

	// Config holds timing and retry settings. Nil uses DefaultConfig().
	Config *Config

	// Handler receives decoded notification payloads. May also be set
	// later with SetHandler.
	Handler dispatch.Handler

	// OnHandlerError is invoked when Handler returns an error or panics.
	OnHandlerError dispatch.ErrorCallback

	// Logger receives operational logs. Nil uses slog.Default().
	Logger *slog.Logger

	// EventLog receives structured client events. Nil disables event
	// logging.
	EventLog log.Logger

	// Transport overrides the HTTP layer. Used by tests; nil builds a
	// rest.Client from Host/Port/BaseURL.
	Transport rest.API
}

// Client maintains a resilient session against one CoCon server.
//
// A client is started once with Start (or Run) and stopped once with Stop;
// it cannot be restarted. All exported methods are safe for concurrent use.
type Client struct {
	cfg    Config
	api    rest.API
	owned  *rest.Client // non-nil when the client built its own transport
	logger *slog.Logger
	events log.Logger

	clientID   string
	retrier    *connection.Retrier
	registry   *subscription.Registry
	dispatcher *dispatch.Dispatcher

	queue chan Command

	sessionMu sync.RWMutex
	sessionID string

	mu      sync.Mutex
	state   lifecycleState
	cancel  context.CancelFunc
	done    chan struct{}
	loopErr error
}

// NewClient creates a client. It does not touch the network until Start.
func NewClient(opts Options) *Client {
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = opts.Config.withDefaults()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	events := opts.EventLog
	if events == nil {
		events = log.NoopLogger{}
	}

	c := &Client{
		cfg:      cfg,
		logger:   logger,
		events:   events,
		clientID: uuid.NewString(),
		registry: subscription.NewRegistry(),
		queue:    make(chan Command, cfg.QueueSize),
	}

	c.api = opts.Transport
	if c.api == nil {
		c.owned = rest.NewClient(rest.Config{
			Host:           opts.Host,
			Port:           opts.Port,
			BaseURL:        opts.BaseURL,
			SessionTimeout: cfg.SessionTimeout,
			NotifyTimeout:  cfg.NotifyTimeout,
		})
		c.api = c.owned
	}

	c.retrier = connection.NewRetrier(connection.RetrierConfig{
		MaxRetries: cfg.MaxRetries,
		Backoff: connection.NewBackoffWithConfig(connection.BackoffConfig{
			Base:   cfg.BackoffBase,
			Jitter: cfg.BackoffJitter,
		}),
		Logger:     logger,
	})
	c.retrier.OnRetry(func(op string, attempt int, delay time.Duration, err error) {
		c.emit(log.Event{
			Category: log.CategoryRetry,
			Retry:    &log.RetryEvent{Op: op, Attempt: attempt, Delay: delay, Reason: err.Error()},
		})
	})

	c.dispatcher = dispatch.NewDispatcher(logger)
	if opts.Handler != nil {
		c.dispatcher.SetHandler(opts.Handler)
	}
	if opts.OnHandlerError != nil {
		c.dispatcher.OnError(opts.OnHandlerError)
	}

	return c
}

// ClientID returns the UUID correlating this instance's events.
func (c *Client) ClientID() string {
	return c.clientID
}

// State returns the current lifecycle state name.
func (c *Client) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.String()
}

// Subscriptions returns the current subscription set, sorted.
func (c *Client) Subscriptions() []string {
	return c.registry.Snapshot()
}

// SetHandler replaces the notification handler. May be called while the
// client is running.
func (c *Client) SetHandler(h dispatch.Handler) {
	c.dispatcher.SetHandler(h)
}

// OnHandlerError sets the callback invoked when the handler fails.
func (c *Client) OnHandlerError(fn dispatch.ErrorCallback) {
	c.dispatcher.OnError(fn)
}

// Start launches the poll and command loops. It returns immediately; the
// connect handshake happens in the background. Starting twice, or starting
// a stopped client, returns ErrAlreadyStarted.
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateNew {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.setState(stateRunning, "start")

	go func() {
		err := c.supervise(ctx)

		c.mu.Lock()
		c.loopErr = err
		c.mu.Unlock()
		close(c.done)
	}()

	return nil
}

// Stop shuts the client down: it cancels both loops, waits for them to
// return, drains the command queue without sending, and waits for in-flight
// notification handlers. Stop is idempotent and returns the error that
// terminated the loops, if any.
func (c *Client) Stop() error {
	c.mu.Lock()
	switch c.state {
	case stateNew:
		c.setState(stateStopped, "stop before start")
		c.mu.Unlock()
		return nil
	case stateRunning:
		c.setState(stateShuttingDown, "stop")
		c.cancel()
	case stateShuttingDown, stateStopped:
		// Another Stop is, or was, in progress; fall through to wait.
	}
	done := c.done
	c.mu.Unlock()

	if done != nil { // nil when the client was stopped before Start
		<-done
	}

	// Drain and wait without holding c.mu: a handler still in flight may
	// call back into the client (Send, State) and needs the lock to
	// return. Both are safe to run from concurrent Stops.
	c.drainQueue()
	c.dispatcher.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateStopped {
		if c.owned != nil {
			c.owned.CloseIdleConnections()
		}
		c.setState(stateStopped, "stopped")
		c.logger.Info("client stopped")
	}
	return c.loopErr
}

// Run starts the client and blocks until ctx is canceled or a loop fails,
// then stops it. The returned error is the loop failure, or nil on a clean
// ctx-driven shutdown.
func (c *Client) Run(ctx context.Context) error {
	if err := c.Start(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-c.Done():
	}
	return c.Stop()
}

// Done returns a channel closed when both loops have terminated.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Wait blocks until the loops terminate and returns their error.
// A client that was never started returns ErrNotStarted.
func (c *Client) Wait() error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return ErrNotStarted
	}
	<-done

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loopErr
}

// Send enqueues a command for asynchronous delivery. When the queue is full
// Send blocks until space frees up, ctx is canceled, or the client shuts
// down. Delivery is at most once: a command whose send fails after retries
// is logged and dropped, not requeued.
func (c *Client) Send(ctx context.Context, endpoint string, params map[string]string) error {
	c.mu.Lock()
	if c.state == stateShuttingDown || c.state == stateStopped {
		c.mu.Unlock()
		return ErrClosed
	}
	done := c.done
	c.mu.Unlock()

	cmd := Command{Endpoint: endpoint, Params: params}
	select {
	case c.queue <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-done: // nil before Start; blocks, leaving ctx in charge
		return ErrClosed
	}
}

// Subscribe subscribes to notifications for the given models and records
// them for replay after reconnects. Each model is sent as its own command,
// synchronously and under the retry policy; the first failure aborts and
// leaves the remaining models unsubscribed. A model joins the replay set
// only once the server has accepted it.
func (c *Client) Subscribe(ctx context.Context, models []string, details bool) error {
	for _, m := range models {
		params := map[string]string{
			"Model":   m,
			"id":      c.session(),
			"details": strconv.FormatBool(details),
		}
		if _, err := c.sendCommand(ctx, rest.EndpointSubscribe, params); err != nil {
			return fmt.Errorf("subscribe %s: %w", m, err)
		}
		c.registry.Add(m)
		c.logger.Info("subscribed", "model", m)
	}
	return nil
}

// Unsubscribe removes the models from the subscription set and tells the
// server to stop sending their notifications. The models leave the replay
// set even when the server command fails; the first failure is returned.
func (c *Client) Unsubscribe(ctx context.Context, models []string) error {
	for _, m := range models {
		params := map[string]string{
			"Model": m,
			"id":    c.session(),
		}
		_, err := c.sendCommand(ctx, rest.EndpointUnsubscribe, params)
		c.registry.Remove(m)
		if err != nil {
			return fmt.Errorf("unsubscribe %s: %w", m, err)
		}
		c.logger.Info("unsubscribed", "model", m)
	}
	return nil
}

// sendCommand sends one command under the retry policy and returns the
// decoded response body.
func (c *Client) sendCommand(ctx context.Context, endpoint string, params map[string]string) (any, error) {
	var body any
	err := c.retrier.Do(ctx, "/"+endpoint, func(ctx context.Context) error {
		res, err := c.api.Send(ctx, endpoint, params)
		if err != nil {
			return err
		}
		body = res
		return nil
	})
	if err != nil {
		c.emit(log.Event{
			Category: log.CategoryCommand,
			Command:  &log.CommandEvent{Endpoint: endpoint, Params: params, HTTPStatus: commandStatus(err)},
		})
		return nil, err
	}

	c.emit(log.Event{
		Category: log.CategoryCommand,
		Command:  &log.CommandEvent{Endpoint: endpoint, Params: params, HTTPStatus: 200},
	})
	c.logger.Debug("command sent", "endpoint", endpoint, "params", params)
	return body, nil
}

// commandStatus extracts the HTTP status from a command failure, or 0 when
// the request never completed.
func commandStatus(err error) int {
	var cmdErr *rest.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Status
	}
	return 0
}

// session returns the current session id, or "" before the first connect.
func (c *Client) session() string {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.sessionID
}

// setSession replaces the session id after a connect handshake.
func (c *Client) setSession(id string) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	c.sessionID = id
}

// setState records a lifecycle transition. Caller holds c.mu.
func (c *Client) setState(next lifecycleState, reason string) {
	old := c.state
	c.state = next
	c.emit(log.Event{
		Category: log.CategoryState,
		State:    &log.StateChangeEvent{OldState: old.String(), NewState: next.String(), Reason: reason},
	})
}

// emit stamps and records one client event.
func (c *Client) emit(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.ClientID = c.clientID
	c.events.Log(ev)
}
