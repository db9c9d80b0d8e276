package workflow

import "fmt"

// PlanningError is fatal for the workflow: no agents run when the
// coordinator cannot produce a usable plan.
type PlanningError struct {
	Reason string
	Err    error
}

func (e *PlanningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("planning failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("planning failed: %s", e.Reason)
}

func (e *PlanningError) Unwrap() error { return e.Err }

// UnauthorizedToolError marks a tool-call request naming a tool outside
// the agent's authorized set. The request is rejected before the
// executor runs.
type UnauthorizedToolError struct {
	Agent string
	Tool  string
}

func (e *UnauthorizedToolError) Error() string {
	return fmt.Sprintf("agent %q is not authorized to call tool %q", e.Agent, e.Tool)
}

// SynthesisError is fatal for the workflow even when agent invocations
// succeeded: without a report there is no result to publish.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("report synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
