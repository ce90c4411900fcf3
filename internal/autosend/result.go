package autosend

// Result is the answer of a run to the scheduler
type Result int

const (
	// ResultSuccess means the run completed, per instance outcomes being in
	// the report
	ResultSuccess Result = iota
	// ResultRetry means the run was deferred without any side effect
	ResultRetry
	// ResultFailure means the run was stopped by a terminal condition
	ResultFailure
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultRetry:
		return "retry"
	default:
		return "failure"
	}
}

// ExitCode maps the result to a process exit status. Retry uses
// EX_TEMPFAIL.
func (r Result) ExitCode() int {
	switch r {
	case ResultSuccess:
		return 0
	case ResultRetry:
		return 75
	default:
		return 1
	}
}
