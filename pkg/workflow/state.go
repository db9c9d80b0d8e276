package workflow

import (
	"sync"
	"time"
)

// Status is the workflow lifecycle. Transitions only move forward:
// initializing, running, then exactly one of completed or failed. Once
// terminal, the workflow never changes again.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusRunning      Status = "running"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// rank orders statuses so transitions can be checked for monotonicity.
func (s Status) rank() int {
	switch s {
	case StatusInitializing:
		return 0
	case StatusRunning:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	}
	return -1
}

// Terminal reports whether the workflow will never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StateEvent is one entry in the workflow trace, appended per
// transition and never rewritten.
type StateEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Detail    string    `json:"detail,omitempty"`
}

// State is a point-in-time snapshot of one workflow, safe to serialize
// while the workflow keeps running.
type State struct {
	WorkflowID  string    `json:"workflow_id"`
	Query       string    `json:"query"`
	Status      Status    `json:"status"`
	CurrentTask string    `json:"current_task,omitempty"`
	StartedAt   time.Time `json:"started_at"`

	// ExecutionTime is elapsed seconds, frozen at the terminal
	// transition.
	ExecutionTime float64 `json:"execution_time"`

	Analysis    string            `json:"analysis,omitempty"`
	Plan        Plan              `json:"plan,omitempty"`
	Invocations []AgentInvocation `json:"invocations,omitempty"`
	Result      *Report           `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	Nodes       []Node            `json:"nodes"`
	Edges       []Edge            `json:"edges"`
	Trace       []StateEvent      `json:"trace"`
}

// Machine owns one workflow's state. All writes go through its mutex;
// readers get copies via Snapshot so a poll never observes a
// half-applied transition.
type Machine struct {
	mu    sync.Mutex
	state State
	done  time.Time
}

func NewMachine(id, query string) *Machine {
	nodes, edges := initialGraph(query)
	m := &Machine{
		state: State{
			WorkflowID: id,
			Query:      query,
			Status:     StatusInitializing,
			StartedAt:  time.Now(),
			Nodes:      nodes,
			Edges:      edges,
		},
	}
	m.appendEvent("workflow_created", "")
	return m
}

// SetPlan records the generated plan, expands the graph to one task
// node per entry and moves the workflow to running.
func (m *Machine) SetPlan(plan Plan, analysis string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.advance(StatusRunning) {
		return
	}
	m.state.Plan = plan
	m.state.Analysis = analysis
	m.state.Invocations = make([]AgentInvocation, len(plan))
	for i, entry := range plan {
		m.state.Invocations[i] = AgentInvocation{
			AgentName: entry.AgentName,
			Task:      entry.Task,
			Status:    InvocationPending,
		}
	}
	m.state.Nodes, m.state.Edges = planGraph(m.state.Query, plan)
	m.appendEvent("plan_generated", analysis)
}

// UpdateInvocation merges one invocation's progress into the state and
// the matching graph node. Updates after a terminal transition are
// dropped.
func (m *Machine) UpdateInvocation(index int, inv AgentInvocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status.Terminal() || index < 0 || index >= len(m.state.Invocations) {
		return
	}
	m.state.Invocations[index] = inv

	id := taskNodeID(index)
	for i := range m.state.Nodes {
		if m.state.Nodes[i].ID == id {
			m.state.Nodes[i].Status = string(inv.Status)
			break
		}
	}

	switch inv.Status {
	case InvocationRunning:
		m.state.CurrentTask = inv.Task
		m.appendEvent("agent_started", inv.AgentName)
	case InvocationSuccess:
		m.appendEvent("agent_succeeded", inv.AgentName)
	case InvocationFailure:
		m.appendEvent("agent_failed", inv.AgentName+": "+inv.Error)
	}
}

// Complete records the final report and moves the workflow to its
// completed terminal state.
func (m *Machine) Complete(report *Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.advance(StatusCompleted) {
		return
	}
	m.state.Result = report
	m.state.CurrentTask = ""
	m.setNodeStatus(nodeOutputID, string(InvocationSuccess))
	m.appendEvent("workflow_completed", "")
}

// Fail moves the workflow to its failed terminal state.
func (m *Machine) Fail(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.advance(StatusFailed) {
		return
	}
	m.state.Error = reason
	m.state.CurrentTask = ""
	m.setNodeStatus(nodeOutputID, string(InvocationFailure))
	m.appendEvent("workflow_failed", reason)
}

// Snapshot returns a copy safe for serialization.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state
	s.ExecutionTime = m.elapsed().Seconds()
	s.Plan = append(Plan(nil), m.state.Plan...)
	s.Invocations = append([]AgentInvocation(nil), m.state.Invocations...)
	s.Nodes = append([]Node(nil), m.state.Nodes...)
	s.Edges = append([]Edge(nil), m.state.Edges...)
	s.Trace = append([]StateEvent(nil), m.state.Trace...)
	return s
}

// advance moves to next when that is a forward transition and reports
// whether the move happened. Terminal states reject everything,
// including the other terminal state.
func (m *Machine) advance(next Status) bool {
	if m.state.Status.Terminal() || next.rank() <= m.state.Status.rank() {
		return false
	}
	m.state.Status = next
	if next.Terminal() {
		m.done = time.Now()
	}
	return true
}

func (m *Machine) elapsed() time.Duration {
	if !m.done.IsZero() {
		return m.done.Sub(m.state.StartedAt)
	}
	return time.Since(m.state.StartedAt)
}

func (m *Machine) setNodeStatus(id, status string) {
	for i := range m.state.Nodes {
		if m.state.Nodes[i].ID == id {
			m.state.Nodes[i].Status = status
			return
		}
	}
}

func (m *Machine) appendEvent(eventType, detail string) {
	m.state.Trace = append(m.state.Trace, StateEvent{
		Timestamp: time.Now(),
		Type:      eventType,
		Detail:    detail,
	})
}

// Store holds the machines of every workflow this process has started,
// keyed by workflow id. Workflows are kept after completion so pollers
// can still fetch results.
type Store struct {
	mu       sync.RWMutex
	machines map[string]*Machine
}

func NewStore() *Store {
	return &Store{machines: make(map[string]*Machine)}
}

func (s *Store) Put(id string, m *Machine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machines[id] = m
}

func (s *Store) Get(id string) (*Machine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.machines[id]
	return m, ok
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.machines)
}
