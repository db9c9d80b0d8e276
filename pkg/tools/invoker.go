package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/Aspect5/fintel-v2-sub000/pkg/observability"
)

// Invoker validates tool calls against the catalog and executes them.
// It is the only path from an agent to a tool: lookup, required-parameter
// validation, deadline, execution, error wrapping.
type Invoker struct {
	catalog *Catalog
	timeout time.Duration
}

func NewInvoker(catalog *Catalog, timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Invoker{
		catalog: catalog,
		timeout: timeout,
	}
}

// Catalog exposes the backing catalog for prompt construction.
func (i *Invoker) Catalog() *Catalog {
	return i.catalog
}

// Invoke looks up the tool, validates required parameters and runs the
// executor. The executor never runs when validation fails. The returned
// result's summary carries its provenance tag.
func (i *Invoker) Invoke(ctx context.Context, toolName string, params map[string]interface{}) (*Result, error) {
	def, ok := i.catalog.Get(toolName)
	if !ok {
		return nil, &UnknownToolError{Tool: toolName}
	}

	for _, name := range def.RequiredParameters() {
		value, present := params[name]
		if !present || value == nil || value == "" {
			return nil, &MissingParameterError{Tool: toolName, Parameter: name}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	result, err := def.Executor.Execute(ctx, params)

	provenance := ""
	if result != nil {
		provenance = string(result.Provenance)
	}
	observability.RecordToolCall(ctx, toolName, provenance, time.Since(start), err)

	if err != nil {
		return nil, &ExecutionError{Tool: toolName, Err: err}
	}

	result.Summary = fmt.Sprintf("[%s] %s", result.Provenance, result.Summary)
	return result, nil
}
