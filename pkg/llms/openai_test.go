package llms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
)

func newTestOpenAIProvider(host string) *OpenAIProvider {
	cfg := &config.LLMProviderConfig{
		Type:   config.ProviderTypeOpenAI,
		APIKey: "sk-test",
		Host:   host,
	}
	cfg.SetDefaults()
	cfg.Host = host
	return NewOpenAIProvider(cfg)
}

func TestOpenAIProvider_GenerateStructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}

		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Error("request missing json_schema response format")
		}

		json.NewEncoder(w).Encode(openAIResponse{
			Choices: []openAIChoice{
				{Message: openAIMessage{Role: "assistant", Content: `{"ok": true}`}},
			},
		})
	}))
	defer srv.Close()

	provider := newTestOpenAIProvider(srv.URL)

	text, err := provider.GenerateStructured(context.Background(), "hello",
		map[string]interface{}{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateStructured() error = %v", err)
	}
	if text != `{"ok": true}` {
		t.Errorf("text = %q", text)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "provider-reported error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(openAIResponse{
					Error: &openAIError{Type: "invalid_request_error", Message: "bad model"},
				})
			},
		},
		{
			name: "empty content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(openAIResponse{
					Choices: []openAIChoice{{Message: openAIMessage{Content: ""}}},
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			provider := newTestOpenAIProvider(srv.URL)

			_, err := provider.GenerateStructured(context.Background(), "hello", nil)

			var provErr *ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("error = %v, want *ProviderError", err)
			}
			if tt.wantStatus != 0 && provErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", provErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestNewProviderFromConfig(t *testing.T) {
	tests := []struct {
		providerType string
		wantName     string
		wantErr      bool
	}{
		{config.ProviderTypeOpenAI, "openai", false},
		{config.ProviderTypeAnthropic, "anthropic", false},
		{config.ProviderTypeOllama, "ollama", false},
		{"bedrock", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.providerType, func(t *testing.T) {
			cfg := &config.LLMProviderConfig{Type: tt.providerType, APIKey: "k"}
			cfg.SetDefaults()

			provider, err := NewProviderFromConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProviderFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && provider.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", provider.Name(), tt.wantName)
			}
		})
	}
}
