package cocon

import (
	"context"
	"fmt"

	"github.com/3P-Technologies/cocon-client/pkg/log"
)

// loopResult is the terminal outcome of one supervised loop.
type loopResult struct {
	name string
	err  error
}

// supervise runs the poll loop and the command loop and fails fast: the
// first loop to return cancels the other, and the first non-nil error is
// the one reported. Returns nil on a clean ctx-driven shutdown.
func (c *Client) supervise(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan loopResult, 2)
	go func() {
		results <- loopResult{name: "poll loop", err: c.pollLoop(ctx)}
	}()
	go func() {
		results <- loopResult{name: "command loop", err: c.commandLoop(ctx)}
	}()

	first := <-results
	if first.err != nil {
		c.logger.Error("supervised loop failed", "loop", first.name, "error", first.err)
	}
	cancel()
	second := <-results
	if second.err != nil {
		c.logger.Error("supervised loop failed", "loop", second.name, "error", second.err)
		if first.err == nil {
			first = second
		}
	}

	if first.err == nil {
		return nil
	}
	c.emit(log.Event{
		Category: log.CategoryError,
		Error:    &log.ErrorEvent{Context: first.name, Message: first.err.Error()},
	})
	return fmt.Errorf("%s: %w", first.name, first.err)
}
