package rest

// Status classifies the outcome of one Notification long-poll request.
type Status uint8

const (
	// StatusOK indicates a payload was delivered.
	StatusOK Status = iota

	// StatusTimeout indicates the long-poll channel timed out (HTTP 408).
	// This is the normal end of an empty poll cycle, not an error.
	StatusTimeout

	// StatusInvalidSession indicates the server rejected the session id
	// (HTTP 400). The client must reconnect.
	StatusInvalidSession

	// StatusUnexpected indicates any other HTTP status.
	StatusUnexpected
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusTimeout:
		return "TIMEOUT"
	case StatusInvalidSession:
		return "INVALID_SESSION"
	case StatusUnexpected:
		return "UNEXPECTED"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of one Notification long-poll request.
type Result struct {
	// Status classifies the outcome.
	Status Status

	// Payload is the decoded notification body. Set only for StatusOK.
	Payload map[string]any

	// HTTPStatus is the raw HTTP status code of the response.
	HTTPStatus int
}
