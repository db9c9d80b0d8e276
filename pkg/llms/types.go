// Package llms implements the model-call gateway: the single chokepoint
// through which every component talks to a language model. Callers hand
// the gateway a prompt and a destination struct; the gateway derives a
// JSON schema from the struct, asks the provider for schema-conforming
// output and decodes the response. Nothing else in the codebase depends
// on a provider wire format.
package llms

import (
	"context"
	"fmt"
)

// Provider is one language-model backend. Implementations send a prompt
// together with the JSON schema the response must satisfy and return the
// raw response text. They never retry; retry policy belongs to callers.
type Provider interface {
	Name() string
	GenerateStructured(ctx context.Context, prompt string, schema map[string]interface{}) (string, error)
}

// ProviderError reports a failed model call: transport failure, non-2xx
// status, a provider-reported error field, or empty content.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// SchemaParseError reports response text that is not valid JSON matching
// the requested schema.
type SchemaParseError struct {
	Provider string
	Raw      string
	Err      error
}

func (e *SchemaParseError) Error() string {
	return fmt.Sprintf("provider %s returned unparseable structured output: %v", e.Provider, e.Err)
}

func (e *SchemaParseError) Unwrap() error {
	return e.Err
}
