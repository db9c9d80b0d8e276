package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Aspect5/fintel-v2-sub000/pkg/agents"
	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
	"github.com/Aspect5/fintel-v2-sub000/pkg/llms"
	"github.com/Aspect5/fintel-v2-sub000/pkg/observability"
	"github.com/Aspect5/fintel-v2-sub000/pkg/tools"
)

// Engine ties the pipeline together: it starts workflows, runs them in
// the background under a deadline, and serves state snapshots to
// pollers. One engine serves the whole process.
type Engine struct {
	llmCfg    *config.LLMConfig
	providers *llms.ProviderRegistry
	planner   *Planner
	orch      *Orchestrator
	synth     *Synthesizer
	store     *Store
	timeout   time.Duration
	logger    *slog.Logger

	// callerFor resolves start options to a gateway. Tests swap it for
	// a deterministic stub.
	callerFor func(StartOptions) (ModelCaller, error)

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewEngine(cfg *config.Config, catalog *agents.Catalog, invoker *tools.Invoker, providers *llms.ProviderRegistry, logger *slog.Logger) *Engine {
	e := &Engine{
		llmCfg:    &cfg.LLM,
		providers: providers,
		planner:   NewPlanner(catalog, cfg.Workflow.MinAgents, cfg.Workflow.MaxAgents),
		orch:      NewOrchestrator(catalog, invoker),
		synth:     NewSynthesizer(catalog),
		store:     NewStore(),
		timeout:   time.Duration(cfg.Workflow.Timeout) * time.Second,
		logger:    logger,
		cancels:   make(map[string]context.CancelFunc),
	}
	e.callerFor = e.gatewayFor
	return e
}

// StartOptions selects the model provider for one workflow.
type StartOptions struct {
	// Provider is the provider role: primary, secondary or local.
	// Empty means primary.
	Provider string

	// BaseURL overrides the local provider's host for this workflow
	// only. Ignored for other roles.
	BaseURL string
}

// Start creates the workflow, returns its id immediately and runs the
// pipeline in the background. Initialization failures (an unconfigured
// provider role) still yield an id: the workflow is registered and
// moved straight to failed so pollers can observe the error.
func (e *Engine) Start(query string, opts StartOptions) string {
	id := uuid.New().String()
	machine := NewMachine(id, query)
	e.store.Put(id, machine)

	caller, err := e.callerFor(opts)
	if err != nil {
		machine.Fail(err.Error())
		observability.RecordWorkflow(context.Background(), string(StatusFailed), 0)
		return id
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	e.mu.Lock()
	e.cancels[id] = cancel
	e.mu.Unlock()

	go e.run(ctx, machine, caller, query)
	return id
}

// Snapshot returns the current state of a workflow.
func (e *Engine) Snapshot(id string) (State, bool) {
	machine, ok := e.store.Get(id)
	if !ok {
		return State{}, false
	}
	return machine.Snapshot(), true
}

// Cancel aborts a running workflow. Cancelling an unknown or already
// terminal workflow reports false.
func (e *Engine) Cancel(id string) bool {
	machine, ok := e.store.Get(id)
	if !ok || machine.Snapshot().Status.Terminal() {
		return false
	}
	machine.Fail("workflow cancelled")

	e.mu.Lock()
	cancel, ok := e.cancels[id]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return true
}

func (e *Engine) run(ctx context.Context, machine *Machine, caller ModelCaller, query string) {
	id := machine.Snapshot().WorkflowID
	start := time.Now()
	defer e.release(id)

	finish := func(status Status) {
		observability.RecordWorkflow(ctx, string(status), time.Since(start))
		e.logger.Info("workflow finished",
			"workflow_id", id,
			"status", string(status),
			"duration", time.Since(start).Round(time.Millisecond).String())
	}

	plan, analysis, err := e.planner.BuildPlan(ctx, caller, query)
	if err != nil {
		machine.Fail(e.deadlineReason(ctx, err))
		finish(StatusFailed)
		return
	}
	machine.SetPlan(plan, analysis)
	e.logger.Info("plan generated", "workflow_id", id, "agents", len(plan))

	invocations := e.orch.Execute(ctx, caller, plan, machine.UpdateInvocation)
	succeeded, failed := Partition(invocations)
	e.logger.Info("agents finished",
		"workflow_id", id,
		"succeeded", len(succeeded),
		"failed", len(failed))

	report, err := e.synth.Synthesize(ctx, caller, query, succeeded, failed)
	if err != nil {
		machine.Fail(e.deadlineReason(ctx, err))
		finish(StatusFailed)
		return
	}

	machine.Complete(report)
	finish(StatusCompleted)
}

// gatewayFor resolves a provider role to a model-call gateway. A
// base-url override clones the local provider's config for this
// workflow instead of mutating the shared registry.
func (e *Engine) gatewayFor(opts StartOptions) (ModelCaller, error) {
	role := opts.Provider
	if role == "" {
		role = config.ProviderRolePrimary
	}

	if role == config.ProviderRoleLocal && opts.BaseURL != "" {
		providerCfg, err := e.llmCfg.Provider(role)
		if err != nil {
			return nil, err
		}
		clone := *providerCfg
		clone.Host = opts.BaseURL
		provider, err := llms.NewProviderFromConfig(&clone)
		if err != nil {
			return nil, err
		}
		return llms.NewGateway(provider, time.Duration(clone.Timeout)*time.Second), nil
	}

	gateway, err := e.providers.GatewayFor(role)
	if err != nil {
		return nil, err
	}
	return gateway, nil
}

// deadlineReason maps context expiry onto a clearer failure message.
func (e *Engine) deadlineReason(ctx context.Context, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("workflow exceeded its %s deadline: %v", e.timeout, err)
	}
	return err.Error()
}

func (e *Engine) release(id string) {
	e.mu.Lock()
	cancel, ok := e.cancels[id]
	delete(e.cancels, id)
	e.mu.Unlock()
	if ok {
		cancel()
	}
}
