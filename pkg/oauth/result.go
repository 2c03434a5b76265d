package oauth

// Status is the outcome reported to a command's caller.
type Status int

const (
	// StatusOK reports success. It is also the flow-closed signal.
	StatusOK Status = iota
	// StatusError reports a failed command, e.g. a missing or invalid URL.
	StatusError
	// StatusInvalidAction reports an unknown command.
	StatusInvalidAction
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusInvalidAction:
		return "invalid_action"
	default:
		return "unknown"
	}
}

// Result is one message on a caller's response channel.
type Result struct {
	Status Status
	// KeepCallback is true when more results will follow on the same channel.
	KeepCallback bool
	// Message describes an error result.
	Message string
}

// Responder is a caller's response channel.
type Responder interface {
	Send(Result)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(Result)

// Send calls f(r).
func (f ResponderFunc) Send(r Result) { f(r) }

var discardResponder = ResponderFunc(func(Result) {})
