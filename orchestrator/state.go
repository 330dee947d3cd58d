package orchestrator

// State is the position of a Run in the orchestration cycle.
type State int

const (
	AwaitingResponse State = iota
	ProcessingCalls
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingResponse:
		return "AwaitingResponse"
	case ProcessingCalls:
		return "ProcessingCalls"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}
