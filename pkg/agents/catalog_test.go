package agents

import (
	"testing"
)

func TestNewCatalog(t *testing.T) {
	tests := []struct {
		name    string
		defs    []Definition
		wantErr bool
	}{
		{
			name: "valid definitions",
			defs: []Definition{
				{Name: "a", Tools: []string{"t1"}},
				{Name: "b", Tools: []string{"t2"}},
			},
			wantErr: false,
		},
		{
			name:    "unnamed definition",
			defs:    []Definition{{Description: "nameless"}},
			wantErr: true,
		},
		{
			name: "duplicate name",
			defs: []Definition{
				{Name: "a"},
				{Name: "a"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.defs...)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefinition_Authorized(t *testing.T) {
	def := Definition{
		Name:  "market_analyst",
		Tools: []string{"get_market_data", "compute_technical_indicators"},
	}

	if !def.Authorized("get_market_data") {
		t.Error("Authorized(get_market_data) = false, want true")
	}
	if def.Authorized("assess_portfolio_risk") {
		t.Error("Authorized(assess_portfolio_risk) = true, want false")
	}
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	if catalog.Count() < 2 {
		t.Fatalf("default catalog has %d agents, want at least 2", catalog.Count())
	}

	for _, def := range catalog.List() {
		if def.Description == "" {
			t.Errorf("agent %s has no description", def.Name)
		}
		if def.Instructions == "" {
			t.Errorf("agent %s has no instructions", def.Name)
		}
		if len(def.Tools) == 0 {
			t.Errorf("agent %s has no tools", def.Name)
		}
	}

	if _, ok := catalog.Get("market_analyst"); !ok {
		t.Error("default catalog missing market_analyst")
	}
	if _, ok := catalog.Get("risk_assessor"); !ok {
		t.Error("default catalog missing risk_assessor")
	}
}
