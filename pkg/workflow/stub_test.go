package workflow

import (
	"context"
	"sync"
	"testing"

	"github.com/Aspect5/fintel-v2-sub000/pkg/agents"
	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
	"github.com/Aspect5/fintel-v2-sub000/pkg/tools"
)

// stubCaller answers model calls by destination type. Handlers that are
// nil fall back to a fixed default, so each test sets up only the step
// it cares about.
type stubCaller struct {
	mu      sync.Mutex
	prompts []string

	planFn      func(prompt string) (planResponse, error)
	selectionFn func(prompt string) (toolSelection, error)
	findingFn   func(prompt string) (findingSynthesis, error)
	reportFn    func(prompt string) (reportResponse, error)
}

func (s *stubCaller) Call(_ context.Context, prompt string, out interface{}) error {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	switch v := out.(type) {
	case *planResponse:
		if s.planFn == nil {
			*v = planResponse{
				Analysis: "default plan",
				Plan: []PlanEntry{
					{AgentName: "market_analyst", Task: "Analyze AAPL price action"},
					{AgentName: "risk_assessor", Task: "Assess AAPL downside risk"},
				},
			}
			return nil
		}
		resp, err := s.planFn(prompt)
		if err != nil {
			return err
		}
		*v = resp
	case *toolSelection:
		if s.selectionFn == nil {
			*v = toolSelection{
				Reasoning: "need a quote",
				ToolCalls: []ToolCallRequest{
					{ToolName: "get_market_data", Parameters: map[string]interface{}{"ticker": "AAPL"}},
				},
			}
			return nil
		}
		resp, err := s.selectionFn(prompt)
		if err != nil {
			return err
		}
		*v = resp
	case *findingSynthesis:
		if s.findingFn == nil {
			*v = findingSynthesis{FinalResponse: "AAPL looks stable."}
			return nil
		}
		resp, err := s.findingFn(prompt)
		if err != nil {
			return err
		}
		*v = resp
	case *reportResponse:
		if s.reportFn == nil {
			*v = reportResponse{
				ExecutiveSummary:          "AAPL is a hold.",
				CrossAgentInsights:        []string{"price and risk views agree"},
				ActionableRecommendations: []string{"hold"},
				RiskAssessment:            "moderate",
				ConfidenceLevel:           0.8,
				DataQualityNotes:          "mock data",
			}
			return nil
		}
		resp, err := s.reportFn(prompt)
		if err != nil {
			return err
		}
		*v = resp
	}
	return nil
}

// promptCount returns how many model calls the stub served.
func (s *stubCaller) promptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// newTestInvoker builds the default tool catalog with no credentials
// configured, so every tool runs its deterministic fallback.
func newTestInvoker(t *testing.T) *tools.Invoker {
	t.Helper()
	var toolsCfg config.ToolsConfig
	toolsCfg.SetDefaults()
	toolsCfg.MarketData.APIKey = ""
	toolsCfg.News.APIKey = ""
	return tools.NewInvoker(tools.DefaultCatalog(toolsCfg), 0)
}

func testCatalog() *agents.Catalog {
	return agents.DefaultCatalog()
}
