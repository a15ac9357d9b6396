package cocon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/3P-Technologies/cocon-client/pkg/connection"
	"github.com/3P-Technologies/cocon-client/pkg/log"
	"github.com/3P-Technologies/cocon-client/pkg/rest"
)

// pollLoop runs connect/poll cycles until ctx is canceled. A cycle that
// fails with a transient error is restarted after a short pause; retry
// exhaustion is fatal and terminates the loop (and with it the client).
func (c *Client) pollLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		err := c.connectAndPoll(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, connection.ErrRetryExhausted) {
			c.logger.Error("poll loop giving up", "error", err)
			c.emit(log.Event{
				Category: log.CategoryError,
				Error:    &log.ErrorEvent{Context: "poll loop", Message: err.Error()},
			})
			return err
		}

		c.logger.Error("poll cycle failed, restarting", "error", err)
		c.emitPollState(pollPolling, pollDisconnected, err.Error())
		if !sleepCtx(ctx, c.cfg.PollInterval) {
			return nil
		}
	}
	return nil
}

// connectAndPoll performs one full cycle: handshake, subscription replay,
// then polling until ctx is canceled or an error forces a restart. A 400
// on the notify endpoint reconnects and replays in place; a 408 is the
// normal end of an empty poll and loops immediately.
func (c *Client) connectAndPoll(ctx context.Context) error {
	if err := c.connect(ctx); err != nil {
		return err
	}
	if err := c.resubscribe(ctx); err != nil {
		return err
	}

	for ctx.Err() == nil {
		res, err := c.api.Notify(ctx, c.session())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("notify: %w", err)
		}

		notifyEv := &log.NotifyEvent{Status: res.Status.String(), HTTPStatus: res.HTTPStatus}
		if res.Status == rest.StatusOK {
			notifyEv.Payload = res.Payload
		}
		c.emit(log.Event{Category: log.CategoryNotify, Notify: notifyEv})

		switch res.Status {
		case rest.StatusOK:
			c.dispatcher.Dispatch(res.Payload)

		case rest.StatusTimeout:
			// Empty poll cycle; go straight back to waiting.

		case rest.StatusInvalidSession:
			c.logger.Warn("session rejected, reconnecting")
			c.emitPollState(pollPolling, pollConnecting, "session rejected")
			if err := c.connect(ctx); err != nil {
				return err
			}
			if err := c.resubscribe(ctx); err != nil {
				return err
			}

		default:
			// No transition for this status; pause so a misbehaving
			// server cannot drive a tight request loop.
			c.logger.Error("unexpected notify response", "http_status", res.HTTPStatus)
			if !sleepCtx(ctx, c.cfg.PollInterval) {
				return nil
			}
		}
	}
	return nil
}

// connect performs the handshake under the retry policy and installs the
// new session id.
func (c *Client) connect(ctx context.Context) error {
	c.emitPollState(pollDisconnected, pollConnecting, "connecting")

	var id string
	err := c.retrier.Do(ctx, "/"+rest.EndpointConnect, func(ctx context.Context) error {
		got, err := c.api.Connect(ctx)
		if err != nil {
			return err
		}
		id = got
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	c.setSession(id)
	c.logger.Info("connected")
	c.logger.Debug("session established", "session_id", id)
	c.emit(log.Event{
		Category: log.CategoryConnect,
		Connect:  &log.ConnectEvent{SessionID: id},
	})
	c.emitPollState(pollConnecting, pollPolling, "connected")
	return nil
}

// resubscribe replays the subscription set against the current session.
// Runs after every handshake so a fresh session sees the same models as
// the one it replaced.
func (c *Client) resubscribe(ctx context.Context) error {
	models := c.registry.Snapshot()
	if len(models) == 0 {
		return nil
	}

	for _, m := range models {
		params := map[string]string{
			"Model":   m,
			"id":      c.session(),
			"details": "true",
		}
		if _, err := c.sendCommand(ctx, rest.EndpointSubscribe, params); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("resubscribe %s: %w", m, err)
		}
	}
	c.logger.Info("subscriptions replayed", "count", len(models))
	return nil
}

// emitPollState records a poll state transition event.
func (c *Client) emitPollState(old, next pollState, reason string) {
	c.emit(log.Event{
		Category: log.CategoryState,
		State:    &log.StateChangeEvent{OldState: old.String(), NewState: next.String(), Reason: reason},
	})
}

// sleepCtx waits for d or until ctx is canceled. Reports whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
