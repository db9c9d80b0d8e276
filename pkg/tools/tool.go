// Package tools implements the tool catalog and invoker: schema-validated
// capabilities the analyst agents may call. Each built-in tool runs
// against its external data provider when a credential is configured and
// falls back to a deterministic local mock otherwise; results always
// carry a provenance tag so downstream synthesis can distinguish live
// data from fallbacks and derived estimates.
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/Aspect5/fintel-v2-sub000/pkg/registry"
)

// Provenance labels where a tool result came from.
type Provenance string

const (
	// ProvenanceLive marks data fetched from an external provider.
	ProvenanceLive Provenance = "live"

	// ProvenanceMock marks a deterministic fallback used when no
	// provider credential is configured.
	ProvenanceMock Provenance = "mock"

	// ProvenanceSynthetic marks values derived locally from other data.
	ProvenanceSynthetic Provenance = "synthetic"

	// ProvenanceInternal marks results of internal-only models.
	ProvenanceInternal Provenance = "internal"
)

// Parameter describes one tool parameter.
type Parameter struct {
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// Result is the outcome of one tool execution. Summary is a one-line
// human-readable description; the invoker prefixes it with the
// provenance tag before handing it to callers.
type Result struct {
	Output     interface{} `json:"output"`
	Summary    string      `json:"summary"`
	Provenance Provenance  `json:"provenance"`
}

// Executor runs a tool with validated parameters.
type Executor interface {
	Execute(ctx context.Context, params map[string]interface{}) (*Result, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, params map[string]interface{}) (*Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	return f(ctx, params)
}

// Definition describes one tool in the catalog.
type Definition struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]Parameter `json:"parameters"`
	Executor    Executor             `json:"-"`
}

// RequiredParameters returns the required parameter names in sorted
// order, so validation reports the same first-missing field every run.
func (d Definition) RequiredParameters() []string {
	required := make([]string, 0, len(d.Parameters))
	for name, p := range d.Parameters {
		if p.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return required
}

// ParameterSchema renders the parameters as a JSON-schema object for
// inclusion in tool-selection prompts.
func (d Definition) ParameterSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(d.Parameters))
	for name, p := range d.Parameters {
		properties[name] = map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   d.RequiredParameters(),
	}
}

// Catalog is a read-only lookup of tool definitions by name.
type Catalog struct {
	*registry.BaseRegistry[Definition]
}

// NewCatalog builds a catalog from the given definitions.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	catalog := &Catalog{BaseRegistry: registry.NewBaseRegistry[Definition]()}
	for _, def := range defs {
		if def.Executor == nil {
			return nil, fmt.Errorf("tool catalog: tool '%s' has no executor", def.Name)
		}
		if err := catalog.Register(def.Name, def); err != nil {
			return nil, fmt.Errorf("tool catalog: %w", err)
		}
	}
	return catalog, nil
}
