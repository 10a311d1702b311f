package coordinator

// State is the coordinator's position in a run.
type State int

const (
	StateNotStarted State = iota
	StateHealthChecked
	StateAborted
	StateRunning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateHealthChecked:
		return "HEALTH_CHECKED"
	case StateAborted:
		return "ABORTED"
	case StateRunning:
		return "RUNNING"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Tally counts scenario verdicts. The health check is not counted.
type Tally struct {
	Passed  int  `json:"passed"`
	Total   int  `json:"total"`
	Success bool `json:"success"`
}

// Failed returns the number of scenarios that did not pass.
func (t Tally) Failed() int {
	return t.Total - t.Passed
}
