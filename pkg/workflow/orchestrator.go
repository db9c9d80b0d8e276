package workflow

import (
	"context"
	"sync"

	"github.com/Aspect5/fintel-v2-sub000/pkg/agents"
	"github.com/Aspect5/fintel-v2-sub000/pkg/tools"
)

// Orchestrator fans the plan out to one task executor per entry and
// collects the results. Execution is best-effort: agent failures are
// recorded, never propagated, and the workflow proceeds to report
// synthesis with whatever succeeded.
type Orchestrator struct {
	catalog *agents.Catalog
	invoker *tools.Invoker
}

func NewOrchestrator(catalog *agents.Catalog, invoker *tools.Invoker) *Orchestrator {
	return &Orchestrator{
		catalog: catalog,
		invoker: invoker,
	}
}

// Execute runs every plan entry concurrently and returns the
// invocations in plan order. onUpdate, when non-nil, is called once per
// invocation transition (running, then the terminal status) so the
// state machine can surface progress to pollers.
func (o *Orchestrator) Execute(ctx context.Context, caller ModelCaller, plan Plan, onUpdate func(int, AgentInvocation)) []AgentInvocation {
	notify := onUpdate
	if notify == nil {
		notify = func(int, AgentInvocation) {}
	}

	results := make([]AgentInvocation, len(plan))
	var wg sync.WaitGroup
	for i, entry := range plan {
		wg.Add(1)
		go func() {
			defer wg.Done()

			agent, ok := o.catalog.Get(entry.AgentName)
			if !ok {
				results[i] = AgentInvocation{
					AgentName: entry.AgentName,
					Task:      entry.Task,
					Status:    InvocationFailure,
					Error:     "agent not found in catalog",
				}
				notify(i, results[i])
				return
			}

			notify(i, AgentInvocation{
				AgentName: entry.AgentName,
				Task:      entry.Task,
				Status:    InvocationRunning,
			})

			results[i] = NewTaskExecutor(agent, entry.Task, caller, o.invoker).Run(ctx)
			notify(i, results[i])
		}()
	}
	wg.Wait()
	return results
}

// Partition splits invocations into succeeded and failed, preserving
// plan order within each group.
func Partition(invocations []AgentInvocation) (succeeded, failed []AgentInvocation) {
	for _, inv := range invocations {
		if inv.Status == InvocationSuccess {
			succeeded = append(succeeded, inv)
		} else {
			failed = append(failed, inv)
		}
	}
	return succeeded, failed
}
