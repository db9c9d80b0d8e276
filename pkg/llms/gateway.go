package llms

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aspect5/fintel-v2-sub000/pkg/observability"
)

// Gateway sends prompts to a single provider and decodes structured
// responses. It enforces a per-call deadline and records metrics, but
// never retries: a failed call surfaces immediately as *ProviderError or
// *SchemaParseError and the caller decides what that means for its
// workflow.
type Gateway struct {
	provider Provider
	timeout  time.Duration
}

func NewGateway(provider Provider, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{
		provider: provider,
		timeout:  timeout,
	}
}

// Provider returns the name of the backing provider.
func (g *Gateway) Provider() string {
	return g.provider.Name()
}

// Call sends the prompt and decodes the response into out, which must be
// a pointer to a struct. The response schema is derived from out's type.
func (g *Gateway) Call(ctx context.Context, prompt string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	tracer := observability.GetTracer("fintel.llms")
	ctx, span := tracer.Start(ctx, "llm.call",
		trace.WithAttributes(
			attribute.String("llm.provider", g.provider.Name()),
			attribute.Int("llm.prompt_chars", len(prompt)),
		),
	)
	defer span.End()

	start := time.Now()
	schema := SchemaFor(out)

	text, err := g.provider.GenerateStructured(ctx, prompt, schema)
	observability.RecordModelCall(ctx, g.provider.Name(), time.Since(start), EstimateTokens(prompt), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
		return err
	}

	if err := json.Unmarshal([]byte(ExtractJSON(text)), out); err != nil {
		parseErr := &SchemaParseError{
			Provider: g.provider.Name(),
			Raw:      text,
			Err:      err,
		}
		span.RecordError(parseErr)
		span.SetStatus(codes.Error, "schema parse failed")
		return parseErr
	}

	return nil
}
