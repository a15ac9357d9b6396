package rest

import "context"

// API is the CoCon HTTP surface consumed by the client core.
// Implementations must be safe for concurrent use: the poll loop and the
// command loop call into the same instance.
type API interface {
	// Connect performs the connect handshake and returns the session id.
	Connect(ctx context.Context) (string, error)

	// Notify performs one Notification long-poll using the session id.
	// HTTP-level outcomes are reported in the Result; the error is reserved
	// for transport and decoding failures.
	Notify(ctx context.Context, sessionID string) (Result, error)

	// Send posts a command to an endpoint with the given query parameters.
	// The decoded response body is returned on 200; a non-200 response
	// yields a *CommandError.
	Send(ctx context.Context, endpoint string, params map[string]string) (any, error)
}
