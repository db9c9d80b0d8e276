package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type instruments struct {
	workflowDuration metric.Float64Histogram
	workflowsTotal   metric.Int64Counter

	llmDuration    metric.Float64Histogram
	llmCalls       metric.Int64Counter
	llmErrors      metric.Int64Counter
	llmInputTokens metric.Int64Counter

	toolDuration metric.Float64Histogram
	toolCalls    metric.Int64Counter
	toolErrors   metric.Int64Counter

	httpDuration metric.Float64Histogram
	httpRequests metric.Int64Counter
}

var current *instruments

// InitMetrics wires the OpenTelemetry meter provider to a Prometheus
// exporter on the default registry and creates all fintel instruments.
// Safe to skip entirely: every Record* helper is a no-op until called.
func InitMetrics(ctx context.Context) error {
	promExporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter("fintel")

	inst := &instruments{}

	if inst.workflowDuration, err = meter.Float64Histogram(
		"fintel_workflow_duration_seconds",
		metric.WithDescription("End-to-end workflow duration in seconds"),
	); err != nil {
		return err
	}
	if inst.workflowsTotal, err = meter.Int64Counter(
		"fintel_workflows_total",
		metric.WithDescription("Total workflows by terminal status"),
	); err != nil {
		return err
	}
	if inst.llmDuration, err = meter.Float64Histogram(
		"fintel_llm_request_duration_seconds",
		metric.WithDescription("Model call duration in seconds"),
	); err != nil {
		return err
	}
	if inst.llmCalls, err = meter.Int64Counter(
		"fintel_llm_calls_total",
		metric.WithDescription("Total model calls"),
	); err != nil {
		return err
	}
	if inst.llmErrors, err = meter.Int64Counter(
		"fintel_llm_errors_total",
		metric.WithDescription("Total model call errors"),
	); err != nil {
		return err
	}
	if inst.llmInputTokens, err = meter.Int64Counter(
		"fintel_llm_tokens_input_total",
		metric.WithDescription("Estimated prompt tokens sent to models"),
	); err != nil {
		return err
	}
	if inst.toolDuration, err = meter.Float64Histogram(
		"fintel_tool_execution_duration_seconds",
		metric.WithDescription("Tool execution duration in seconds"),
	); err != nil {
		return err
	}
	if inst.toolCalls, err = meter.Int64Counter(
		"fintel_tool_calls_total",
		metric.WithDescription("Total tool calls"),
	); err != nil {
		return err
	}
	if inst.toolErrors, err = meter.Int64Counter(
		"fintel_tool_errors_total",
		metric.WithDescription("Total tool call errors"),
	); err != nil {
		return err
	}
	if inst.httpDuration, err = meter.Float64Histogram(
		"fintel_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	); err != nil {
		return err
	}
	if inst.httpRequests, err = meter.Int64Counter(
		"fintel_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
	); err != nil {
		return err
	}

	current = inst
	return nil
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordModelCall records one gateway call against a provider.
func RecordModelCall(ctx context.Context, provider string, duration time.Duration, promptTokens int, err error) {
	if current == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("provider", provider))
	current.llmCalls.Add(ctx, 1, attrs)
	current.llmDuration.Record(ctx, duration.Seconds(), attrs)
	if promptTokens > 0 {
		current.llmInputTokens.Add(ctx, int64(promptTokens), attrs)
	}
	if err != nil {
		current.llmErrors.Add(ctx, 1, attrs)
	}
}

// RecordToolCall records one tool execution.
func RecordToolCall(ctx context.Context, tool, provenance string, duration time.Duration, err error) {
	if current == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("provenance", provenance),
	)
	current.toolCalls.Add(ctx, 1, attrs)
	current.toolDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		current.toolErrors.Add(ctx, 1, attrs)
	}
}

// RecordWorkflow records one workflow reaching a terminal status.
func RecordWorkflow(ctx context.Context, status string, duration time.Duration) {
	if current == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	current.workflowsTotal.Add(ctx, 1, attrs)
	current.workflowDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if current == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	current.httpRequests.Add(ctx, 1, attrs)
	current.httpDuration.Record(ctx, duration.Seconds(), attrs)
}
