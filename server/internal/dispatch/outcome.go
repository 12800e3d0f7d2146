package dispatch

// Status is the terminal state of one notification.
type Status int

const (
	Delivered Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of handling one inbound event.
type Outcome struct {
	Status Status
	Reason string
}

func delivered() Outcome { return Outcome{Status: Delivered} }

func failed(reason string) Outcome { return Outcome{Status: Failed, Reason: reason} }

// Skip returns a Skipped outcome with the given reason.
func Skip(reason string) Outcome { return Outcome{Status: Skipped, Reason: reason} }
