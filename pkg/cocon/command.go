package cocon

import "context"

// commandLoop delivers queued commands until ctx is canceled. Delivery is
// at most once: a command that still fails after retries is logged and
// dropped. Commands left in the queue at shutdown are drained by Stop
// without being sent.
func (c *Client) commandLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-c.queue:
			c.deliver(ctx, cmd)
		}
	}
}

// deliver sends one queued command, injecting the current session id.
func (c *Client) deliver(ctx context.Context, cmd Command) {
	params := make(map[string]string, len(cmd.Params)+1)
	for k, v := range cmd.Params {
		params[k] = v
	}
	if _, ok := params["id"]; !ok {
		params["id"] = c.session()
	}

	if _, err := c.sendCommand(ctx, cmd.Endpoint, params); err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error("queued command dropped", "endpoint", cmd.Endpoint, "error", err)
	}
}

// drainQueue discards commands still queued at shutdown. Called after both
// loops have terminated; late Send calls see the shutdown state and are
// refused, so the queue only shrinks.
func (c *Client) drainQueue() {
	for {
		select {
		case cmd := <-c.queue:
			c.logger.Warn("discarding queued command on shutdown", "endpoint", cmd.Endpoint)
		default:
			return
		}
	}
}
