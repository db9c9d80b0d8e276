package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
	"github.com/Aspect5/fintel-v2-sub000/pkg/httpclient"
)

// OllamaProvider talks to a local Ollama server. The schema is passed as
// the chat "format" field, which Ollama enforces natively.
type OllamaProvider struct {
	config     *config.LLMProviderConfig
	httpClient *httpclient.Client
}

type ollamaRequest struct {
	Model    string                 `json:"model"`
	Messages []ollamaMessage        `json:"messages"`
	Format   map[string]interface{} `json:"format,omitempty"`
	Stream   bool                   `json:"stream"`
	Options  ollamaOptions          `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error,omitempty"`
}

func NewOllamaProvider(cfg *config.LLMProviderConfig) *OllamaProvider {
	return &OllamaProvider{
		config: cfg,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Timeout) * time.Second,
			}),
		),
	}
}

func (p *OllamaProvider) Name() string {
	return config.ProviderTypeOllama
}

func (p *OllamaProvider) GenerateStructured(ctx context.Context, prompt string, schema map[string]interface{}) (string, error) {
	reqBody := ollamaRequest{
		Model: p.config.Model,
		Messages: []ollamaMessage{
			{Role: "user", Content: prompt},
		},
		Format: schema,
		Stream: false,
		Options: ollamaOptions{
			Temperature: p.config.Temperature,
			NumPredict:  p.config.MaxTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.Host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

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

	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "failed to decode response", Err: err}
	}
	if parsed.Error != "" {
		return "", &ProviderError{Provider: p.Name(), Message: parsed.Error}
	}
	if parsed.Message.Content == "" {
		return "", &ProviderError{Provider: p.Name(), Message: "empty response content"}
	}

	return parsed.Message.Content, nil
}
