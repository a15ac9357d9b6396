package rest

import (
	"errors"
	"fmt"
)

// Connect handshake errors. Both are retried identically by the client core;
// the distinction only matters for diagnostics.
var (
	// ErrConnectionFailed indicates the handshake was rejected outright
	// (transport failure or non-200 response).
	ErrConnectionFailed = errors.New("connect handshake failed")

	// ErrMalformedResponse indicates a 200 handshake response whose body did
	// not carry a usable session id.
	ErrMalformedResponse = errors.New("malformed connect response")
)

// CommandError reports a non-200 response from a command endpoint.
type CommandError struct {
	// Endpoint is the endpoint that failed, without the leading slash.
	Endpoint string

	// Status is the HTTP status code returned.
	Status int

	// Body is the response body, for inspection.
	Body string
}

// Error returns the command failure description.
func (e *CommandError) Error() string {
	return fmt.Sprintf("'/%s' failed with HTTP %d", e.Endpoint, e.Status)
}
