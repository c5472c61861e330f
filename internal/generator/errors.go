package generator

import "fmt"

// SpawnError means the tool could not be started at all.
type SpawnError struct {
	Tool  string
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v (ensure %s is installed and on PATH)", e.Tool, e.Cause, e.Tool)
}

func (e *SpawnError) Unwrap() error {
	return e.Cause
}

// ProcessFailure means the tool ran but did not exit successfully.
type ProcessFailure struct {
	Tool     string
	ExitCode int
	TimedOut bool
	Cause    error
}

func (e *ProcessFailure) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s timed out and was stopped", e.Tool)
	}
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s failed: %v", e.Tool, e.Cause)
	}
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

func (e *ProcessFailure) Unwrap() error {
	return e.Cause
}
