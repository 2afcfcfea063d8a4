package sale

// State is a step of the order entry workflow.
type State int

// Workflow states. Rejected is reachable only from Validating; Failed from
// ResolvingCustomer or RecordingOrder.
const (
	Idle State = iota
	Validating
	ResolvingCustomer
	RecordingOrder
	Committed
	Rejected
	Failed
)

var stateNames = [...]string{
	Idle:              "idle",
	Validating:        "validating",
	ResolvingCustomer: "resolving_customer",
	RecordingOrder:    "recording_order",
	Committed:         "committed",
	Rejected:          "rejected",
	Failed:            "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	return s == Committed || s == Rejected || s == Failed
}
