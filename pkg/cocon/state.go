package cocon

// lifecycleState tracks the client through its life. Transitions are
// monotonic: a stopped client stays stopped.
type lifecycleState uint8

const (
	stateNew lifecycleState = iota
	stateRunning
	stateShuttingDown
	stateStopped
)

// String returns the state name.
func (s lifecycleState) String() string {
	switch s {
	case stateNew:
		return "NEW"
	case stateRunning:
		return "RUNNING"
	case stateShuttingDown:
		return "SHUTTING_DOWN"
	case stateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// pollState tracks where the poll loop is in its connect/poll cycle. Used
// for event logging and the status display; the loop itself is driven by
// control flow, not by this value.
type pollState uint8

const (
	pollDisconnected pollState = iota
	pollConnecting
	pollPolling
)

// String returns the state name.
func (s pollState) String() string {
	switch s {
	case pollDisconnected:
		return "DISCONNECTED"
	case pollConnecting:
		return "CONNECTING"
	case pollPolling:
		return "POLLING"
	default:
		return "UNKNOWN"
	}
}
