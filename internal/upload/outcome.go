package upload

// Outcome is the result of a single submission attempt
type Outcome struct {
	Success bool
	// Message is shown to the user in the run report
	Message string
	// Fatal aborts the remaining submissions of the run
	Fatal        bool
	AuthRequired bool
	// Skipped outcomes leave the instance status unchanged
	Skipped bool
}

func Succeeded(message string) Outcome {
	return Outcome{Success: true, Message: message}
}

func Failed(message string) Outcome {
	return Outcome{Message: message}
}

func Aborted(message string) Outcome {
	return Outcome{Message: message, Fatal: true}
}

func Unauthorized(message string) Outcome {
	return Outcome{Message: message, Fatal: true, AuthRequired: true}
}

func Skipped(message string) Outcome {
	return Outcome{Message: message, Skipped: true}
}
