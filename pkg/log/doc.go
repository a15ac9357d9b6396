// Package log provides structured event logging for the CoCon client.
//
// Events capture the client's protocol activity: connect handshakes, notify
// poll outcomes, command sends, retries, and lifecycle state changes. They
// are written through the Logger interface, so applications choose the sink:
//
//   - FileLogger writes compact CBOR records for later analysis
//   - SlogAdapter mirrors events to an slog.Logger at debug level
//   - MultiLogger fans out to several sinks
//   - NoopLogger discards everything
//
// Reader streams events back out of a CBOR log file, optionally filtered.
// The cocon-log command builds on Reader for viewing and statistics.
package log
