package provision

// State is the position of one activation run.  Failed absorbs, nothing leaves it.
type State int

const (
	Init State = iota
	ClientCreated
	SubscriptionCreated
	Provisioned
	Failed
)

var stateNames = []string{"Init", "ClientCreated", "SubscriptionCreated", "Provisioned", "Failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the run is over.
func (s State) Terminal() bool {
	return s == Provisioned || s == Failed
}
