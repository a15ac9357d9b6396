// Package rest implements the CoCon HTTP surface consumed by the client core.
//
// This package handles:
//   - The Connect handshake that yields a session id
//   - The Notification long-poll, reported as an explicit Result value
//   - Generic command POSTs (Subscribe, Unsubscribe, and arbitrary endpoints)
//
// It deliberately knows nothing about retries, subscriptions, or loop
// orchestration; those live in the client core. Notification payloads and
// command responses are opaque JSON values here.
//
// # Notification results
//
// The long-poll outcome is a value, not an error, because a 408 is the normal
// end of an empty poll cycle and a 400 is an expected session-expiry signal:
//
//	StatusOK             200 - payload delivered
//	StatusTimeout        408 - empty cycle, poll again
//	StatusInvalidSession 400 - session id rejected, reconnect
//	StatusUnexpected     anything else
//
// Transport and decoding failures are returned as errors alongside the
// zero Result.
package rest
