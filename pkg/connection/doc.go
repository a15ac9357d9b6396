// Package connection provides the retry policy shared by the CoCon client's
// connect handshake and command sends.
//
// This package handles:
//   - Exponential backoff with jitter
//   - Retry orchestration with a bounded or unbounded attempt budget
//
// # Backoff
//
// The delay before retry attempt n (counting from 0) is:
//
//	delay(n) = min(base * 2^n + random(0, jitter), max)
//
// With the defaults (base 500ms, jitter 1s, max 30s) the base sequence is
// 0.5s, 1s, 2s, 4s, 8s, 16s, 30s, 30s... Jitter prevents thundering-herd
// reconnects when many clients lose the same server.
//
// # Retry budget
//
// A non-negative MaxRetries bounds the number of attempts; when the budget is
// spent the operation fails with ErrRetryExhausted. A negative MaxRetries
// retries forever. The same policy is applied to every retried operation so
// connects and commands behave identically under failure.
package connection
