package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
	"github.com/Aspect5/fintel-v2-sub000/pkg/httpclient"
)

// AnthropicProvider talks to the Anthropic messages API. Anthropic has no
// response_format parameter, so the schema is embedded in the system
// prompt and the response is treated as JSON text.
type AnthropicProvider struct {
	config     *config.LLMProviderConfig
	httpClient *httpclient.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewAnthropicProvider(cfg *config.LLMProviderConfig) *AnthropicProvider {
	return &AnthropicProvider{
		config: cfg,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Timeout) * time.Second,
			}),
		),
	}
}

func (p *AnthropicProvider) Name() string {
	return config.ProviderTypeAnthropic
}

func (p *AnthropicProvider) buildSystemPrompt(schema map[string]interface{}) string {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "Respond with a single valid JSON object and nothing else."
	}
	return fmt.Sprintf(
		"Respond with a single valid JSON object matching this JSON schema, with no surrounding prose or markdown:\n%s",
		schemaJSON)
}

func (p *AnthropicProvider) GenerateStructured(ctx context.Context, prompt string, schema map[string]interface{}) (string, error) {
	reqBody := anthropicRequest{
		Model:     p.config.Model,
		MaxTokens: p.config.MaxTokens,
		System:    p.buildSystemPrompt(schema),
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.Host+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "failed to read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "failed to decode response", Err: err}
	}
	if parsed.Error != nil {
		return "", &ProviderError{
			Provider: p.Name(),
			Message:  fmt.Sprintf("%s: %s", parsed.Error.Type, parsed.Error.Message),
		}
	}

	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", &ProviderError{Provider: p.Name(), Message: "empty response content"}
}
