package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes client events to an slog.Logger.
// Useful for development when you want to see protocol activity in console.
// Events are logged at debug level, so session ids never reach operational
// log levels.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("client_id", event.ClientID),
		slog.String("category", event.Category.String()),
	}

	switch {
	case event.Connect != nil:
		attrs = append(attrs, slog.String("session_id", event.Connect.SessionID))
	case event.Notify != nil:
		attrs = append(attrs,
			slog.String("status", event.Notify.Status),
			slog.Int("http_status", event.Notify.HTTPStatus),
		)
	case event.Command != nil:
		attrs = append(attrs,
			slog.String("endpoint", event.Command.Endpoint),
			slog.Int("http_status", event.Command.HTTPStatus),
		)
	case event.Retry != nil:
		attrs = append(attrs,
			slog.String("op", event.Retry.Op),
			slog.Int("attempt", event.Retry.Attempt),
			slog.Duration("delay", event.Retry.Delay),
			slog.String("reason", event.Retry.Reason),
		)
	case event.State != nil:
		attrs = append(attrs,
			slog.String("old_state", event.State.OldState),
			slog.String("new_state", event.State.NewState),
		)
		if event.State.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.State.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_context", event.Error.Context),
			slog.String("error_msg", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "cocon", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
