package autosend

type Decision int

const (
	DecisionProceed Decision = iota
	DecisionDefer
	DecisionFail
)

func (d Decision) String() string {
	switch d {
	case DecisionProceed:
		return "proceed"
	case DecisionDefer:
		return "defer"
	default:
		return "fail"
	}
}

// Decide resolves the run gate. An unavailable storage always fails the
// run; a disallowed medium defers it unless a form forces auto-send.
func Decide(storageReady, mediumAllows, anyFormForces bool) Decision {
	switch {
	case !storageReady:
		return DecisionFail
	case !mediumAllows && !anyFormForces:
		return DecisionDefer
	default:
		return DecisionProceed
	}
}
