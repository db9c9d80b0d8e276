package workflow

import "fmt"

// Node is one vertex of the workflow graph projection served to
// pollers.
type Node struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Label     string `json:"label"`
	AgentName string `json:"agent_name,omitempty"`
	Task      string `json:"task,omitempty"`
	Status    string `json:"status"`
}

// Edge links two graph nodes.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
}

const (
	nodeTypeInput  = "input"
	nodeTypeTask   = "agent_task"
	nodeTypeOutput = "output"

	nodeInputID  = "input"
	nodeOutputID = "output"

	relationDependsOn = "depends_on"
	relationProduces  = "produces"
)

func taskNodeID(index int) string {
	return fmt.Sprintf("task_%d", index)
}

// initialGraph is the pre-plan shape: the input node alone.
func initialGraph(query string) ([]Node, []Edge) {
	return []Node{{
		ID:     nodeInputID,
		Type:   nodeTypeInput,
		Label:  query,
		Status: "received",
	}}, nil
}

// planGraph expands the graph once the plan exists: one task node per
// entry fanning out of the input node and converging on the output
// node.
func planGraph(query string, plan Plan) ([]Node, []Edge) {
	nodes, edges := initialGraph(query)
	for i, entry := range plan {
		id := taskNodeID(i)
		nodes = append(nodes, Node{
			ID:        id,
			Type:      nodeTypeTask,
			Label:     entry.AgentName,
			AgentName: entry.AgentName,
			Task:      entry.Task,
			Status:    string(InvocationPending),
		})
		edges = append(edges, Edge{From: id, To: nodeInputID, Relation: relationDependsOn})
		edges = append(edges, Edge{From: id, To: nodeOutputID, Relation: relationProduces})
	}
	nodes = append(nodes, Node{
		ID:     nodeOutputID,
		Type:   nodeTypeOutput,
		Label:  "final report",
		Status: string(InvocationPending),
	})
	return nodes, edges
}
