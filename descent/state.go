package descent

// State is the run state of an Engine.
type State int

const (
	// Idle is the initial state and the state after Reset.
	Idle State = iota
	// Running means the engine steps on every tick of its periodic task.
	Running
	// Paused keeps parameters and history but does not tick.
	Paused
	// Converged means the iteration limit was reached.
	Converged
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Converged:
		return "converged"
	default:
		return "unknown"
	}
}
