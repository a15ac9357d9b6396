package log

import "time"

// Event represents one client event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ClientID correlates events from one client instance (UUID).
	ClientID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Type-specific payload (one of these will be set).
	Connect *ConnectEvent     `cbor:"4,keyasint,omitempty"`
	Notify  *NotifyEvent      `cbor:"5,keyasint,omitempty"`
	Command *CommandEvent     `cbor:"6,keyasint,omitempty"`
	Retry   *RetryEvent       `cbor:"7,keyasint,omitempty"`
	State   *StateChangeEvent `cbor:"8,keyasint,omitempty"`
	Error   *ErrorEvent       `cbor:"9,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryConnect indicates a completed connect handshake.
	CategoryConnect Category = 0
	// CategoryNotify indicates a notification long-poll outcome.
	CategoryNotify Category = 1
	// CategoryCommand indicates a command send.
	CategoryCommand Category = 2
	// CategoryRetry indicates a retry of a failed operation.
	CategoryRetry Category = 3
	// CategoryState indicates a lifecycle or poll state change.
	CategoryState Category = 4
	// CategoryError indicates an error event.
	CategoryError Category = 5
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryConnect:
		return "CONNECT"
	case CategoryNotify:
		return "NOTIFY"
	case CategoryCommand:
		return "COMMAND"
	case CategoryRetry:
		return "RETRY"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ConnectEvent captures a successful connect handshake.
type ConnectEvent struct {
	// SessionID is the session id issued by the server.
	SessionID string `cbor:"1,keyasint"`
}

// NotifyEvent captures the outcome of one notification long-poll.
type NotifyEvent struct {
	// Status is the result classification (OK, TIMEOUT, ...).
	Status string `cbor:"1,keyasint"`

	// HTTPStatus is the raw HTTP status code.
	HTTPStatus int `cbor:"2,keyasint,omitempty"`

	// Payload is the decoded notification body (StatusOK only).
	Payload any `cbor:"3,keyasint,omitempty"`
}

// CommandEvent captures a command send.
type CommandEvent struct {
	// Endpoint is the command endpoint, without the leading slash.
	Endpoint string `cbor:"1,keyasint"`

	// Params are the query parameters sent with the command.
	Params map[string]string `cbor:"2,keyasint,omitempty"`

	// HTTPStatus is the response status (0 when the request never
	// completed).
	HTTPStatus int `cbor:"3,keyasint,omitempty"`
}

// RetryEvent captures one retry of a failed operation.
type RetryEvent struct {
	// Op names the retried operation.
	Op string `cbor:"1,keyasint"`

	// Attempt is the retry number, counting from 1.
	Attempt int `cbor:"2,keyasint"`

	// Delay is the backoff wait before the retry. Stored as nanoseconds.
	Delay time.Duration `cbor:"3,keyasint"`

	// Reason is the failure that triggered the retry.
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures lifecycle and poll state transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEvent captures errors worth recording.
type ErrorEvent struct {
	// Context describes what operation was being performed.
	Context string `cbor:"1,keyasint,omitempty"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`
}
