package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aspect5/fintel-v2-sub000/pkg/agents"
)

// Synthesizer produces the final report from the agent findings. The
// model writes the prose fields; failed agents are attached mechanically
// so degraded runs are always visible in the output.
type Synthesizer struct {
	catalog *agents.Catalog
}

func NewSynthesizer(catalog *agents.Catalog) *Synthesizer {
	return &Synthesizer{catalog: catalog}
}

// reportResponse is the structured output requested from the model. The
// agent findings and failed agents are supplied by the engine, not the
// model, so they are absent here.
type reportResponse struct {
	ExecutiveSummary          string   `json:"executive_summary"`
	CrossAgentInsights        []string `json:"cross_agent_insights"`
	ActionableRecommendations []string `json:"actionable_recommendations"`
	RiskAssessment            string   `json:"risk_assessment"`
	ConfidenceLevel           float64  `json:"confidence_level"`
	DataQualityNotes          string   `json:"data_quality_notes"`
}

// Synthesize builds the final report. It runs even when every agent
// failed, producing a degraded but well-formed report; a model failure
// here fails the workflow.
func (s *Synthesizer) Synthesize(ctx context.Context, caller ModelCaller, query string, succeeded, failed []AgentInvocation) (*Report, error) {
	findings := s.findings(succeeded)

	var resp reportResponse
	if err := caller.Call(ctx, s.prompt(query, findings, failed), &resp); err != nil {
		return nil, &SynthesisError{Err: err}
	}

	confidence := resp.ConfidenceLevel
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	report := &Report{
		ExecutiveSummary:          resp.ExecutiveSummary,
		AgentFindings:             findings,
		FailedAgents:              make([]FailedAgent, 0, len(failed)),
		CrossAgentInsights:        resp.CrossAgentInsights,
		ActionableRecommendations: resp.ActionableRecommendations,
		RiskAssessment:            resp.RiskAssessment,
		ConfidenceLevel:           confidence,
		DataQualityNotes:          resp.DataQualityNotes,
	}
	for _, inv := range failed {
		report.FailedAgents = append(report.FailedAgents, FailedAgent{
			AgentName: inv.AgentName,
			Task:      inv.Task,
			Error:     inv.Error,
		})
	}
	return report, nil
}

func (s *Synthesizer) findings(succeeded []AgentInvocation) []AgentFinding {
	findings := make([]AgentFinding, 0, len(succeeded))
	for _, inv := range succeeded {
		specialization := ""
		if def, ok := s.catalog.Get(inv.AgentName); ok {
			specialization = def.Description
		}
		details := make([]string, 0, len(inv.ToolCalls))
		for _, call := range inv.ToolCalls {
			details = append(details, call.Summary)
		}
		findings = append(findings, AgentFinding{
			AgentName:      inv.AgentName,
			Specialization: specialization,
			Summary:        inv.SynthesizedResponse,
			ToolDetails:    details,
		})
	}
	return findings
}

func (s *Synthesizer) prompt(query string, findings []AgentFinding, failed []AgentInvocation) string {
	var b strings.Builder
	b.WriteString("You are the lead analyst assembling a final report from your team's findings.\n\n")
	fmt.Fprintf(&b, "Original question: %s\n\n", query)

	if len(findings) == 0 {
		b.WriteString("No agent produced a finding. Write a report that states the analysis could not be completed, sets a confidence level of 0 and explains the gap in the data quality notes.\n")
	} else {
		b.WriteString("Findings:\n")
		for _, f := range findings {
			fmt.Fprintf(&b, "### %s (%s)\n%s\n", f.AgentName, f.Specialization, f.Summary)
			for _, d := range f.ToolDetails {
				fmt.Fprintf(&b, "  - %s\n", d)
			}
		}
	}

	if len(failed) > 0 {
		b.WriteString("\nThe following agents failed, so their perspective is missing:\n")
		for _, inv := range failed {
			fmt.Fprintf(&b, "- %s: %s\n", inv.AgentName, inv.Error)
		}
		b.WriteString("Lower the confidence level accordingly and call out the gaps in the data quality notes.\n")
	}

	b.WriteString("\nWrite the executive summary, cross-agent insights, actionable recommendations, risk assessment, a confidence level between 0 and 1, and data quality notes. Mention provenance where findings rest on mock or synthetic data.\n")
	return b.String()
}
