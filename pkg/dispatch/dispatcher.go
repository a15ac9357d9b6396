package dispatch

import (
	"fmt"
	"log/slog"
	"sync"
)

// Handler processes one decoded notification payload.
type Handler func(payload map[string]any) error

// ErrorCallback is invoked when a handler fails, with the failure and the
// payload that triggered it.
type ErrorCallback func(err error, payload map[string]any)

// Dispatcher hands notification payloads to the registered handler.
// It is safe for concurrent use.
type Dispatcher struct {
	mu      sync.RWMutex
	handler Handler
	onError ErrorCallback

	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A nil logger uses slog.Default().
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// SetHandler replaces the notification handler. May be called at any time,
// including while the client is running.
func (d *Dispatcher) SetHandler(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = h
}

// OnError sets the callback invoked when a handler fails.
func (d *Dispatcher) OnError(fn ErrorCallback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onError = fn
}

// Dispatch hands the payload to the handler on its own goroutine and returns
// immediately. Without a registered handler the payload is only logged.
func (d *Dispatcher) Dispatch(payload map[string]any) {
	d.mu.RLock()
	handler := d.handler
	d.mu.RUnlock()

	if handler == nil {
		d.logger.Info("notification received", "payload", payload)
		return
	}

	d.wg.Add(1)
	go d.invoke(handler, payload)
}

// Wait blocks until all in-flight handler invocations have returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// invoke runs the handler, containing returned errors and panics.
func (d *Dispatcher) invoke(handler Handler, payload map[string]any) {
	defer d.wg.Done()

	err := func() (err error) {
		defer func() {
			if v := recover(); v != nil {
				err = fmt.Errorf("handler panic: %v", v)
			}
		}()
		return handler(payload)
	}()
	if err == nil {
		return
	}

	d.logger.Error("notification handler failed", "error", err, "payload", payload)

	d.mu.RLock()
	onError := d.onError
	d.mu.RUnlock()
	if onError == nil {
		return
	}

	defer func() {
		if v := recover(); v != nil {
			d.logger.Error("notification error callback failed", "panic", v)
		}
	}()
	onError(err, payload)
}
