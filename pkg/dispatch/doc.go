// Package dispatch delivers notification payloads to a user-supplied handler.
//
// Handlers run detached from the poll loop so slow or failing handlers never
// stall or terminate polling. Handler failures (returned errors and panics)
// are caught, logged with the offending payload, and forwarded to an optional
// error callback; a failure inside the error callback itself is caught and
// logged separately. When no handler is registered, payloads are logged.
package dispatch
