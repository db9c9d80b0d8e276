package workflow

import (
	"testing"
)

func TestMachine_ForwardOnlyTransitions(t *testing.T) {
	m := NewMachine("wf-1", "query")
	if got := m.Snapshot().Status; got != StatusInitializing {
		t.Fatalf("initial status = %s", got)
	}

	m.SetPlan(testPlan(), "analysis")
	if got := m.Snapshot().Status; got != StatusRunning {
		t.Fatalf("status after plan = %s", got)
	}

	m.Complete(&Report{ExecutiveSummary: "done"})
	if got := m.Snapshot().Status; got != StatusCompleted {
		t.Fatalf("status after complete = %s", got)
	}

	// Terminal states are sticky: neither Fail nor a second plan moves
	// the workflow again.
	m.Fail("too late")
	m.SetPlan(testPlan(), "again")
	s := m.Snapshot()
	if s.Status != StatusCompleted {
		t.Errorf("status regressed to %s", s.Status)
	}
	if s.Error != "" {
		t.Errorf("error set after completion: %q", s.Error)
	}
	if s.Result == nil || s.Result.ExecutiveSummary != "done" {
		t.Error("result lost after late transitions")
	}
}

func TestMachine_FailIsSticky(t *testing.T) {
	m := NewMachine("wf-2", "query")
	m.Fail("planning failed")
	m.Complete(&Report{})

	s := m.Snapshot()
	if s.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", s.Status)
	}
	if s.Result != nil {
		t.Error("result attached to a failed workflow")
	}
}

func TestMachine_GraphExpansion(t *testing.T) {
	m := NewMachine("wf-3", "Should I invest in AAPL?")

	s := m.Snapshot()
	if len(s.Nodes) != 1 || s.Nodes[0].Type != nodeTypeInput {
		t.Fatalf("initial graph = %+v", s.Nodes)
	}

	plan := testPlan()
	m.SetPlan(plan, "")
	s = m.Snapshot()

	if len(s.Nodes) != len(plan)+2 {
		t.Fatalf("nodes = %d, want %d", len(s.Nodes), len(plan)+2)
	}
	if len(s.Edges) != 2*len(plan) {
		t.Fatalf("edges = %d, want %d", len(s.Edges), 2*len(plan))
	}
	for i, entry := range plan {
		node := s.Nodes[i+1]
		if node.AgentName != entry.AgentName || node.Status != string(InvocationPending) {
			t.Errorf("task node %d = %+v", i, node)
		}
	}
}

func TestMachine_UpdateInvocationMergesNode(t *testing.T) {
	m := NewMachine("wf-4", "query")
	m.SetPlan(testPlan(), "")

	m.UpdateInvocation(1, AgentInvocation{
		AgentName: "risk_assessor",
		Task:      "Assess AAPL downside risk",
		Status:    InvocationRunning,
	})

	s := m.Snapshot()
	if s.CurrentTask != "Assess AAPL downside risk" {
		t.Errorf("current task = %q", s.CurrentTask)
	}
	if s.Invocations[1].Status != InvocationRunning {
		t.Errorf("invocation status = %s", s.Invocations[1].Status)
	}

	var node Node
	for _, n := range s.Nodes {
		if n.ID == taskNodeID(1) {
			node = n
		}
	}
	if node.Status != string(InvocationRunning) {
		t.Errorf("node status = %q", node.Status)
	}

	// The untouched sibling keeps its pending state: updates merge,
	// they never replace the graph.
	if s.Invocations[0].Status != InvocationPending {
		t.Errorf("sibling invocation status = %s", s.Invocations[0].Status)
	}
}

func TestMachine_TraceIsAppendOnly(t *testing.T) {
	m := NewMachine("wf-5", "query")
	lenAt := func() int { return len(m.Snapshot().Trace) }

	created := lenAt()
	m.SetPlan(testPlan(), "")
	planned := lenAt()
	m.UpdateInvocation(0, AgentInvocation{AgentName: "market_analyst", Status: InvocationRunning})
	started := lenAt()
	m.Complete(&Report{})
	completed := lenAt()

	if !(created < planned && planned < started && started < completed) {
		t.Errorf("trace lengths not increasing: %d %d %d %d", created, planned, started, completed)
	}

	trace := m.Snapshot().Trace
	if trace[0].Type != "workflow_created" {
		t.Errorf("first event = %q", trace[0].Type)
	}
	if trace[len(trace)-1].Type != "workflow_completed" {
		t.Errorf("last event = %q", trace[len(trace)-1].Type)
	}
}

func TestMachine_SnapshotIsACopy(t *testing.T) {
	m := NewMachine("wf-6", "query")
	m.SetPlan(testPlan(), "")

	s := m.Snapshot()
	s.Nodes[0].Status = "mutated"
	s.Invocations[0].Status = InvocationFailure
	s.Trace[0].Type = "mutated"

	fresh := m.Snapshot()
	if fresh.Nodes[0].Status == "mutated" || fresh.Invocations[0].Status == InvocationFailure || fresh.Trace[0].Type == "mutated" {
		t.Error("snapshot shares state with the machine")
	}
}

func TestStore(t *testing.T) {
	store := NewStore()
	store.Put("a", NewMachine("a", "q"))

	if _, ok := store.Get("a"); !ok {
		t.Error("stored machine not found")
	}
	if _, ok := store.Get("b"); ok {
		t.Error("unknown id resolved")
	}
	if store.Count() != 1 {
		t.Errorf("count = %d", store.Count())
	}
}
