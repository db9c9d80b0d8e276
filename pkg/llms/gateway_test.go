package llms

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubProvider struct {
	name     string
	response string
	err      error

	lastPrompt string
	lastSchema map[string]interface{}
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) GenerateStructured(ctx context.Context, prompt string, schema map[string]interface{}) (string, error) {
	s.lastPrompt = prompt
	s.lastSchema = schema
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type planResult struct {
	Analysis string `json:"analysis"`
	Plan     []struct {
		AgentName string `json:"agent_name"`
		Task      string `json:"task"`
	} `json:"plan"`
}

func TestGateway_Call(t *testing.T) {
	provider := &stubProvider{
		name:     "stub",
		response: `{"analysis": "two angles", "plan": [{"agent_name": "market_analyst", "task": "check AAPL"}]}`,
	}
	gateway := NewGateway(provider, time.Second)

	var out planResult
	if err := gateway.Call(context.Background(), "plan this", &out); err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	if out.Analysis != "two angles" {
		t.Errorf("Analysis = %q", out.Analysis)
	}
	if len(out.Plan) != 1 || out.Plan[0].AgentName != "market_analyst" {
		t.Errorf("Plan = %+v", out.Plan)
	}
	if provider.lastSchema["type"] != "object" {
		t.Errorf("schema type = %v, want object", provider.lastSchema["type"])
	}
}

func TestGateway_CallFencedResponse(t *testing.T) {
	provider := &stubProvider{
		name:     "stub",
		response: "```json\n{\"analysis\": \"ok\", \"plan\": []}\n```",
	}
	gateway := NewGateway(provider, time.Second)

	var out planResult
	if err := gateway.Call(context.Background(), "plan", &out); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if out.Analysis != "ok" {
		t.Errorf("Analysis = %q, want ok", out.Analysis)
	}
}

func TestGateway_CallProviderError(t *testing.T) {
	wantErr := &ProviderError{Provider: "stub", StatusCode: 500, Message: "boom"}
	gateway := NewGateway(&stubProvider{name: "stub", err: wantErr}, time.Second)

	var out planResult
	err := gateway.Call(context.Background(), "plan", &out)

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Call() error = %v, want *ProviderError", err)
	}
	if provErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", provErr.StatusCode)
	}
}

func TestGateway_CallSchemaParseError(t *testing.T) {
	gateway := NewGateway(&stubProvider{name: "stub", response: "not json at all"}, time.Second)

	var out planResult
	err := gateway.Call(context.Background(), "plan", &out)

	var parseErr *SchemaParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Call() error = %v, want *SchemaParseError", err)
	}
	if parseErr.Raw != "not json at all" {
		t.Errorf("Raw = %q", parseErr.Raw)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no lang", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around object", `Here you go: {"a": 1} hope that helps`, `{"a": 1}`},
		{"array", `[1, 2]`, `[1, 2]`},
		{"no json", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.input); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSchemaFor(t *testing.T) {
	schema := SchemaFor(&planResult{})

	if schema["type"] != "object" {
		t.Fatalf("schema type = %v, want object", schema["type"])
	}
	props, ok := schema["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("schema has no properties map")
	}
	for _, field := range []string{"analysis", "plan"} {
		if _, ok := props[field]; !ok {
			t.Errorf("schema missing property %q", field)
		}
	}
	if _, ok := schema["$schema"]; ok {
		t.Error("schema still carries $schema marker")
	}
}
