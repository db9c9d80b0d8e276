// Package workflow implements the fintel orchestration engine: plan
// generation, concurrent per-agent task execution, partial-failure
// isolation, report synthesis and the workflow state machine observed
// by pollers.
package workflow

import (
	"context"
)

// ModelCaller is the model-call gateway contract the engine depends on.
// llms.Gateway satisfies it; tests substitute deterministic stubs.
type ModelCaller interface {
	Call(ctx context.Context, prompt string, out interface{}) error
}

// PlanEntry assigns one task to one agent.
type PlanEntry struct {
	AgentName string `json:"agent_name"`
	Task      string `json:"task"`
}

// Plan is the ordered set of assignments produced once per workflow and
// never mutated.
type Plan []PlanEntry

// ToolCallRequest is one tool call the model asked an agent to make.
type ToolCallRequest struct {
	ToolName   string                 `json:"tool_name"`
	Parameters map[string]interface{} `json:"parameters"`
}

// ToolCallResult is the outcome of one executed tool call. Summary is
// provenance-tagged by the tool invoker.
type ToolCallResult struct {
	ToolName   string                 `json:"tool_name"`
	Input      map[string]interface{} `json:"input"`
	Output     interface{}            `json:"output"`
	Summary    string                 `json:"summary"`
	Provenance string                 `json:"provenance"`
}

// InvocationStatus is the lifecycle of one agent invocation. Success and
// failure are terminal; an invocation is never retried within its
// workflow.
type InvocationStatus string

const (
	InvocationPending InvocationStatus = "pending"
	InvocationRunning InvocationStatus = "running"
	InvocationSuccess InvocationStatus = "success"
	InvocationFailure InvocationStatus = "failure"
)

// AgentInvocation is the runtime record of one agent executing its
// assigned task.
type AgentInvocation struct {
	AgentName           string           `json:"agent_name"`
	Task                string           `json:"task"`
	ToolCalls           []ToolCallResult `json:"tool_calls"`
	SynthesizedResponse string           `json:"synthesized_response,omitempty"`
	Status              InvocationStatus `json:"status"`
	Error               string           `json:"error,omitempty"`
}

// AgentFinding is the projection of a successful invocation handed to
// report synthesis.
type AgentFinding struct {
	AgentName      string   `json:"agent_name"`
	Specialization string   `json:"specialization"`
	Summary        string   `json:"summary"`
	ToolDetails    []string `json:"tool_details"`
}

// FailedAgent records one failed invocation in the final report. It is
// attached mechanically, never synthesized by the model.
type FailedAgent struct {
	AgentName string `json:"agent_name"`
	Task      string `json:"task"`
	Error     string `json:"error"`
}

// Report is the final synthesized output of a completed workflow.
type Report struct {
	ExecutiveSummary          string         `json:"executive_summary"`
	AgentFindings             []AgentFinding `json:"agent_findings"`
	FailedAgents              []FailedAgent  `json:"failed_agents"`
	CrossAgentInsights        []string       `json:"cross_agent_insights"`
	ActionableRecommendations []string       `json:"actionable_recommendations"`
	RiskAssessment            string         `json:"risk_assessment"`
	ConfidenceLevel           float64        `json:"confidence_level"`
	DataQualityNotes          string         `json:"data_quality_notes"`
}
