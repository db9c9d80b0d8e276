// Package agents defines the analyst catalog: the immutable set of
// specialist personas the coordinator can plan with. The catalog is
// constructed once at startup and passed by reference; nothing mutates
// it afterwards.
package agents

import (
	"fmt"

	"github.com/Aspect5/fintel-v2-sub000/pkg/registry"
)

// Definition describes one analyst agent.
type Definition struct {
	// Name is the unique identifier the planner assigns tasks to.
	Name string `json:"name"`

	// Description tells the coordinator what this analyst is good at.
	Description string `json:"description"`

	// Instructions is the persona prompt used during finding synthesis.
	Instructions string `json:"instructions"`

	// Tools is the set of tool names this analyst may invoke. Any tool
	// call outside this set is rejected before execution.
	Tools []string `json:"tools"`
}

// Authorized reports whether the agent may invoke the named tool.
func (d Definition) Authorized(tool string) bool {
	for _, t := range d.Tools {
		if t == tool {
			return true
		}
	}
	return false
}

// Catalog is a read-only lookup of agent definitions by name.
type Catalog struct {
	*registry.BaseRegistry[Definition]
}

// NewCatalog builds a catalog from the given definitions. Duplicate or
// unnamed definitions are a configuration error.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	catalog := &Catalog{BaseRegistry: registry.NewBaseRegistry[Definition]()}
	for _, def := range defs {
		if err := catalog.Register(def.Name, def); err != nil {
			return nil, fmt.Errorf("agent catalog: %w", err)
		}
	}
	return catalog, nil
}
