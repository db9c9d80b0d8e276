package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Aspect5/fintel-v2-sub000/pkg/agents"
	"github.com/Aspect5/fintel-v2-sub000/pkg/tools"
)

// TaskExecutor runs one agent's assigned task through the fixed
// pipeline: tool selection, concurrent tool invocation, finding
// synthesis. A failure at any step fails the whole invocation; partial
// results are never synthesized.
type TaskExecutor struct {
	agent   agents.Definition
	task    string
	caller  ModelCaller
	invoker *tools.Invoker
}

func NewTaskExecutor(agent agents.Definition, task string, caller ModelCaller, invoker *tools.Invoker) *TaskExecutor {
	return &TaskExecutor{
		agent:   agent,
		task:    task,
		caller:  caller,
		invoker: invoker,
	}
}

// toolSelection is the structured output of the tool-selection step.
type toolSelection struct {
	Reasoning string            `json:"reasoning"`
	ToolCalls []ToolCallRequest `json:"tool_calls"`
}

// findingSynthesis is the structured output of the synthesis step.
type findingSynthesis struct {
	FinalResponse string `json:"final_response"`
}

// Run executes the pipeline and returns the invocation record. The
// record's status is success or failure on return; errors are folded
// into the record rather than propagated, keeping sibling agents
// isolated from this one's failure.
func (e *TaskExecutor) Run(ctx context.Context) AgentInvocation {
	inv := AgentInvocation{
		AgentName: e.agent.Name,
		Task:      e.task,
		Status:    InvocationRunning,
	}

	var selection toolSelection
	if err := e.caller.Call(ctx, e.selectionPrompt(), &selection); err != nil {
		return fail(inv, fmt.Errorf("tool selection: %w", err))
	}

	for _, call := range selection.ToolCalls {
		if !e.agent.Authorized(call.ToolName) {
			return fail(inv, &UnauthorizedToolError{Agent: e.agent.Name, Tool: call.ToolName})
		}
	}

	results, err := e.invokeAll(ctx, selection.ToolCalls)
	if err != nil {
		return fail(inv, err)
	}
	inv.ToolCalls = results

	var synthesis findingSynthesis
	if err := e.caller.Call(ctx, e.synthesisPrompt(results), &synthesis); err != nil {
		return fail(inv, fmt.Errorf("finding synthesis: %w", err))
	}
	if strings.TrimSpace(synthesis.FinalResponse) == "" {
		return fail(inv, fmt.Errorf("finding synthesis: model returned an empty response"))
	}

	inv.SynthesizedResponse = synthesis.FinalResponse
	inv.Status = InvocationSuccess
	return inv
}

// invokeAll runs the requested tool calls concurrently. Results keep
// the request order regardless of completion order; the first failure
// cancels the remaining calls and fails the invocation.
func (e *TaskExecutor) invokeAll(ctx context.Context, calls []ToolCallRequest) ([]ToolCallResult, error) {
	results := make([]ToolCallResult, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			res, err := e.invoker.Invoke(gctx, call.ToolName, call.Parameters)
			if err != nil {
				return err
			}
			results[i] = ToolCallResult{
				ToolName:   call.ToolName,
				Input:      call.Parameters,
				Output:     res.Output,
				Summary:    res.Summary,
				Provenance: string(res.Provenance),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func fail(inv AgentInvocation, err error) AgentInvocation {
	inv.Status = InvocationFailure
	inv.Error = err.Error()
	return inv
}

func (e *TaskExecutor) selectionPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. %s\n\n", e.agent.Name, e.agent.Description)
	fmt.Fprintf(&b, "Your task: %s\n\n", e.task)
	b.WriteString("Select the tool calls needed to complete the task. You may only use these tools:\n")
	for _, name := range e.agent.Tools {
		def, ok := e.invoker.Catalog().Get(name)
		if !ok {
			continue
		}
		schema, _ := json.Marshal(def.ParameterSchema())
		fmt.Fprintf(&b, "- %s: %s\n  parameters: %s\n", def.Name, def.Description, schema)
	}
	b.WriteString("\nReturn the exact tool names and concrete parameter values. Return an empty list if no tool is needed.\n")
	return b.String()
}

func (e *TaskExecutor) synthesisPrompt(results []ToolCallResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n%s\n\n", e.agent.Name, e.agent.Instructions)
	fmt.Fprintf(&b, "Your task: %s\n\n", e.task)
	b.WriteString("Tool results:\n")
	for _, r := range results {
		out, _ := json.Marshal(r.Output)
		fmt.Fprintf(&b, "- %s: %s\n  data: %s\n", r.ToolName, r.Summary, out)
	}
	b.WriteString("\nSynthesize a concise finding that answers the task using only the tool results above. Note the provenance tags: treat mock and synthetic data as estimates.\n")
	return b.String()
}
