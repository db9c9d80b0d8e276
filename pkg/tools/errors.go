package tools

import (
	"fmt"
)

// UnknownToolError reports a tool name absent from the catalog. This is
// a configuration error and is never retried.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool '%s'", e.Tool)
}

// MissingParameterError reports the first required parameter missing
// from a tool call.
type MissingParameterError struct {
	Tool      string
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("tool '%s': missing required parameter '%s'", e.Tool, e.Parameter)
}

// ExecutionError wraps a failure inside a tool executor. Executor
// failures are never swallowed; they surface through this type.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool '%s' execution failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
