package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
	"github.com/Aspect5/fintel-v2-sub000/pkg/llms"
)

func newTestEngine(t *testing.T, caller ModelCaller) *Engine {
	t.Helper()

	cfg := &config.Config{}
	cfg.LLM.Providers = map[string]*config.LLMProviderConfig{
		config.ProviderRolePrimary: {Type: config.ProviderTypeOllama},
		config.ProviderRoleLocal:   {Type: config.ProviderTypeOllama},
	}
	cfg.SetDefaults()

	providers, err := llms.BuildRegistry(&cfg.LLM)
	if err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(cfg, testCatalog(), newTestInvoker(t), providers, slog.New(slog.DiscardHandler))
	if caller != nil {
		eng.callerFor = func(StartOptions) (ModelCaller, error) { return caller, nil }
	}
	return eng
}

func waitTerminal(t *testing.T, eng *Engine, id string) State {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state, ok := eng.Snapshot(id)
		if !ok {
			t.Fatalf("workflow %s disappeared", id)
		}
		if state.Status.Terminal() {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("workflow %s never reached a terminal state", id)
	return State{}
}

func TestEngine_CompletesWorkflow(t *testing.T) {
	eng := newTestEngine(t, &stubCaller{})

	id := eng.Start("Should I invest in AAPL?", StartOptions{})
	if id == "" {
		t.Fatal("no workflow id")
	}

	// The id must resolve immediately, before the workflow finishes.
	if _, ok := eng.Snapshot(id); !ok {
		t.Fatal("workflow not pollable right after start")
	}

	state := waitTerminal(t, eng, id)
	if state.Status != StatusCompleted {
		t.Fatalf("status = %s, error = %s", state.Status, state.Error)
	}
	if state.Result == nil {
		t.Fatal("completed workflow has no report")
	}
	if len(state.Result.AgentFindings) != 2 {
		t.Errorf("findings = %d, want 2", len(state.Result.AgentFindings))
	}
	if len(state.Plan) != 2 {
		t.Errorf("plan entries = %d, want 2", len(state.Plan))
	}
	if state.ExecutionTime <= 0 {
		t.Error("execution time not recorded")
	}
}

func TestEngine_PlanningFailureFailsWorkflow(t *testing.T) {
	eng := newTestEngine(t, &stubCaller{planFn: func(string) (planResponse, error) {
		return planResponse{}, errors.New("provider down")
	}})

	id := eng.Start("query", StartOptions{})
	state := waitTerminal(t, eng, id)

	if state.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", state.Status)
	}
	if !strings.Contains(state.Error, "planning failed") {
		t.Errorf("error = %q", state.Error)
	}
	if len(state.Invocations) != 0 {
		t.Error("agents ran despite planning failure")
	}
}

func TestEngine_DegradedCompletionWhenAllAgentsFail(t *testing.T) {
	eng := newTestEngine(t, &stubCaller{
		selectionFn: func(string) (toolSelection, error) {
			return toolSelection{}, errors.New("model refused")
		},
	})

	id := eng.Start("query", StartOptions{})
	state := waitTerminal(t, eng, id)

	if state.Status != StatusCompleted {
		t.Fatalf("status = %s, error = %s", state.Status, state.Error)
	}
	if state.Result == nil || len(state.Result.FailedAgents) != 2 {
		t.Fatalf("result = %+v", state.Result)
	}
	if len(state.Result.AgentFindings) != 0 {
		t.Error("findings present although every agent failed")
	}
}

func TestEngine_SynthesisFailureFailsWorkflow(t *testing.T) {
	eng := newTestEngine(t, &stubCaller{reportFn: func(string) (reportResponse, error) {
		return reportResponse{}, errors.New("schema violation")
	}})

	id := eng.Start("query", StartOptions{})
	state := waitTerminal(t, eng, id)

	if state.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", state.Status)
	}
	if !strings.Contains(state.Error, "report synthesis failed") {
		t.Errorf("error = %q", state.Error)
	}
}

func TestEngine_UnknownRoleFailsButYieldsID(t *testing.T) {
	eng := newTestEngine(t, nil)

	id := eng.Start("query", StartOptions{Provider: "secondary"})
	if id == "" {
		t.Fatal("no workflow id")
	}

	state, ok := eng.Snapshot(id)
	if !ok {
		t.Fatal("workflow not registered")
	}
	if state.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", state.Status)
	}
	if !strings.Contains(state.Error, "secondary") {
		t.Errorf("error = %q", state.Error)
	}
}

// blockingCaller plans normally and then parks every tool-selection
// call until the context is cancelled.
type blockingCaller struct {
	stub    stubCaller
	blocked chan struct{}
}

func (b *blockingCaller) Call(ctx context.Context, prompt string, out interface{}) error {
	if _, ok := out.(*toolSelection); ok {
		select {
		case b.blocked <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}
	return b.stub.Call(ctx, prompt, out)
}

func TestEngine_Cancel(t *testing.T) {
	caller := &blockingCaller{blocked: make(chan struct{}, 1)}
	eng := newTestEngine(t, caller)

	id := eng.Start("query", StartOptions{})

	select {
	case <-caller.blocked:
	case <-time.After(5 * time.Second):
		t.Fatal("workflow never reached agent execution")
	}

	if !eng.Cancel(id) {
		t.Fatal("cancel reported false for a running workflow")
	}

	state := waitTerminal(t, eng, id)
	if state.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", state.Status)
	}
	if state.Error != "workflow cancelled" {
		t.Errorf("error = %q", state.Error)
	}

	// Terminal workflows reject a second cancel, as do unknown ids.
	if eng.Cancel(id) {
		t.Error("cancel succeeded twice")
	}
	if eng.Cancel("nope") {
		t.Error("cancel succeeded for an unknown id")
	}
}

func TestEngine_GatewayForLocalOverride(t *testing.T) {
	eng := newTestEngine(t, nil)

	caller, err := eng.gatewayFor(StartOptions{Provider: config.ProviderRoleLocal, BaseURL: "http://127.0.0.1:9999"})
	if err != nil {
		t.Fatal(err)
	}
	if caller == nil {
		t.Fatal("no gateway for local override")
	}

	if _, err := eng.gatewayFor(StartOptions{Provider: "secondary"}); err == nil {
		t.Error("unconfigured role resolved")
	}
}
