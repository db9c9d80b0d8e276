package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("FINTEL_TEST_VAR", "hello")
	defer os.Unsetenv("FINTEL_TEST_VAR")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no vars", "plain text", "plain text"},
		{"braced", "${FINTEL_TEST_VAR}", "hello"},
		{"simple", "$FINTEL_TEST_VAR", "hello"},
		{"default used", "${FINTEL_UNSET_VAR:-fallback}", "fallback"},
		{"default ignored", "${FINTEL_TEST_VAR:-fallback}", "hello"},
		{"unset braced", "${FINTEL_UNSET_VAR}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnvVars(tt.input); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	os.Setenv("FINTEL_TEST_KEY", "sk-test")
	defer os.Unsetenv("FINTEL_TEST_KEY")

	doc := `
server:
  port: 9090
llm:
  providers:
    primary:
      type: openai
      api_key: ${FINTEL_TEST_KEY}
    local:
      type: ollama
      host: http://localhost:11434
workflow:
  timeout: 120
`
	path := filepath.Join(t.TempDir(), "fintel.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}

	primary, err := cfg.LLM.Provider(ProviderRolePrimary)
	if err != nil {
		t.Fatalf("Provider(primary) error = %v", err)
	}
	if primary.APIKey != "sk-test" {
		t.Errorf("primary APIKey = %q, want expanded env value", primary.APIKey)
	}
	if primary.Model == "" {
		t.Error("primary Model default not applied")
	}

	if cfg.Workflow.Timeout != 120 {
		t.Errorf("Workflow.Timeout = %d, want 120", cfg.Workflow.Timeout)
	}
	if cfg.Workflow.MinAgents != 2 || cfg.Workflow.MaxAgents != 3 {
		t.Errorf("plan bounds = [%d, %d], want [2, 3]",
			cfg.Workflow.MinAgents, cfg.Workflow.MaxAgents)
	}
}

func TestLLMConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LLMConfig
		wantErr bool
	}{
		{
			name: "valid",
			cfg: LLMConfig{Providers: map[string]*LLMProviderConfig{
				ProviderRolePrimary: {Type: ProviderTypeOpenAI, APIKey: "k"},
			}},
			wantErr: false,
		},
		{
			name:    "no providers",
			cfg:     LLMConfig{Providers: map[string]*LLMProviderConfig{}},
			wantErr: true,
		},
		{
			name: "missing primary role",
			cfg: LLMConfig{Providers: map[string]*LLMProviderConfig{
				ProviderRoleLocal: {Type: ProviderTypeOllama},
			}},
			wantErr: true,
		},
		{
			name: "unknown role",
			cfg: LLMConfig{Providers: map[string]*LLMProviderConfig{
				ProviderRolePrimary: {Type: ProviderTypeOpenAI, APIKey: "k"},
				"tertiary":          {Type: ProviderTypeOpenAI, APIKey: "k"},
			}},
			wantErr: true,
		},
		{
			name: "missing api key",
			cfg: LLMConfig{Providers: map[string]*LLMProviderConfig{
				ProviderRolePrimary: {Type: ProviderTypeOpenAI},
			}},
			wantErr: true,
		},
		{
			name: "ollama needs no key",
			cfg: LLMConfig{Providers: map[string]*LLMProviderConfig{
				ProviderRolePrimary: {Type: ProviderTypeOllama},
			}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
