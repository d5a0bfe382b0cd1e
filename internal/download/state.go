package download

// ItemState is the lifecycle position of one content item.
//
//	Pending → Downloading → Merging → Completed
//	              ↓            ↓
//	            Failed       Failed
//
// An item short-circuited before any transfer (existing output, declined
// overwrite, no usable stream) goes from Pending straight to a terminal state.
type ItemState int

const (
	StatePending ItemState = iota
	StateDownloading
	StateMerging
	StateCompleted
	StateFailed
)

func (s ItemState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDownloading:
		return "downloading"
	case StateMerging:
		return "merging"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s ItemState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransition reports whether moving from s to next is allowed.
func (s ItemState) CanTransition(next ItemState) bool {
	switch s {
	case StatePending:
		return next == StateDownloading || next == StateCompleted || next == StateFailed
	case StateDownloading:
		return next == StateMerging || next == StateFailed
	case StateMerging:
		return next == StateCompleted || next == StateFailed
	default:
		return false
	}
}

// Outcome says how an item ended.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeSkipped
	OutcomeDeclined
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDeclined:
		return "declined"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Success reports whether the outcome counts as a success. Skips and
// declines are normal negative outcomes, not failures.
func (o Outcome) Success() bool {
	return o != OutcomeFailed
}

// ItemUpdate is delivered on every item state change.
type ItemUpdate struct {
	Index int
	Count int
	Title string
	State ItemState
}
