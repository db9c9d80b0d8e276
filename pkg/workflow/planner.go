package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aspect5/fintel-v2-sub000/pkg/agents"
)

// Planner is the coordinator step: it turns the user query into a plan
// of agent/task assignments. Planning happens exactly once per workflow
// and its failure is fatal.
type Planner struct {
	catalog   *agents.Catalog
	minAgents int
	maxAgents int
}

func NewPlanner(catalog *agents.Catalog, minAgents, maxAgents int) *Planner {
	if minAgents <= 0 {
		minAgents = 2
	}
	if maxAgents < minAgents {
		maxAgents = minAgents + 1
	}
	return &Planner{
		catalog:   catalog,
		minAgents: minAgents,
		maxAgents: maxAgents,
	}
}

// planResponse is the structured output requested from the model.
type planResponse struct {
	Analysis string      `json:"analysis"`
	Plan     []PlanEntry `json:"plan"`
}

// BuildPlan asks the model for a plan and validates it against the
// agent catalog. Plans referencing unknown agents, empty plans and
// plans below the minimum size fail the workflow; oversized plans are
// truncated to the maximum.
func (p *Planner) BuildPlan(ctx context.Context, caller ModelCaller, query string) (Plan, string, error) {
	var resp planResponse
	if err := caller.Call(ctx, p.prompt(query), &resp); err != nil {
		return nil, "", &PlanningError{Reason: "model call failed", Err: err}
	}

	if len(resp.Plan) == 0 {
		return nil, "", &PlanningError{Reason: "model returned an empty plan"}
	}
	if len(resp.Plan) < p.minAgents {
		return nil, "", &PlanningError{
			Reason: fmt.Sprintf("plan has %d entries, need at least %d", len(resp.Plan), p.minAgents),
		}
	}
	if len(resp.Plan) > p.maxAgents {
		resp.Plan = resp.Plan[:p.maxAgents]
	}

	for _, entry := range resp.Plan {
		if _, ok := p.catalog.Get(entry.AgentName); !ok {
			return nil, "", &PlanningError{
				Reason: fmt.Sprintf("plan references unknown agent '%s'", entry.AgentName),
			}
		}
		if strings.TrimSpace(entry.Task) == "" {
			return nil, "", &PlanningError{
				Reason: fmt.Sprintf("plan entry for agent '%s' has no task", entry.AgentName),
			}
		}
	}

	return Plan(resp.Plan), resp.Analysis, nil
}

func (p *Planner) prompt(query string) string {
	var b strings.Builder
	b.WriteString("You are the coordinator of a team of financial analyst agents.\n")
	b.WriteString("Decompose the user's question into independent tasks and assign each to the best-suited agent.\n\n")
	b.WriteString("Available agents:\n")
	for _, name := range p.catalog.Names() {
		def, _ := p.catalog.Get(name)
		fmt.Fprintf(&b, "- %s: %s (tools: %s)\n", def.Name, def.Description, strings.Join(def.Tools, ", "))
	}
	fmt.Fprintf(&b, "\nAssign between %d and %d agents. Each task must be self-contained: the agent sees only its own task text, never the other tasks.\n", p.minAgents, p.maxAgents)
	fmt.Fprintf(&b, "Use each agent at most once.\n\nUser question: %s\n", query)
	return b.String()
}
