package log

// MultiLogger fans each client event out to several loggers. cocon-monitor
// uses it to feed the CBOR event file and the debug console from the same
// client.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger over the given loggers. Events are
// delivered in argument order; a nil logger is not allowed.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log delivers the event to every configured logger. Delivery is
// synchronous, so the slowest logger bounds how quickly the poll and
// command loops can emit.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
