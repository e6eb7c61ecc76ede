package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

const tracerName = "auleserve/services"

// ResponseParser turns raw model output into a ResponseRecord.
type ResponseParser struct {
	logger *slog.Logger
}

func NewResponseParser(logger *slog.Logger) *ResponseParser {
	return &ResponseParser{logger: logger}
}

// Parse runs extraction, scanning, coercion and validation over raw.
// It always produces a record; bad tool bodies are flagged, not returned as
// errors.
func (p *ResponseParser) Parse(ctx context.Context, raw string) domain.ResponseRecord {
	_, span := otel.Tracer(tracerName).Start(ctx, "services.ResponseParser.Parse",
		trace.WithAttributes(attribute.Int("input_bytes", len(raw))),
	)
	defer span.End()

	extracted := ExtractTags(raw)

	scanned := ScanToolCalls(raw)
	calls := make([]domain.ToolCall, 0, len(scanned))
	for _, sc := range scanned {
		calls = append(calls, p.buildToolCall(sc))
	}

	record := AssembleResponse(extracted, calls)
	span.SetAttributes(
		attribute.Int("tool_calls", len(record.ToolCalls)),
		attribute.Int("invalid_tools", len(record.InvalidTools())),
		attribute.Bool("has_reasoning", record.Extracted.Reasoning != nil),
		attribute.Bool("has_solution", record.Extracted.Solution != nil),
	)
	return record
}

func (p *ResponseParser) buildToolCall(sc RawToolCall) domain.ToolCall {
	payload := CoercePayload(p.logger, sc.Kind, sc.Content)
	valid := ValidateToolPayload(sc.Kind, payload)

	toolCallsTotal.WithLabelValues(string(sc.Kind), validityLabel(valid)).Inc()
	if !valid {
		p.logger.Warn("invalid tool call schema",
			"kind", sc.Kind,
			"missing", domain.MissingFields(sc.Kind, payload),
			"raw_content", sc.Content,
		)
	}

	return domain.ToolCall{
		Kind:       sc.Kind,
		RawContent: sc.Content,
		Payload:    payload,
		IsValid:    valid,
	}
}

// AssembleResponse combines extraction output with the ordered tool calls.
func AssembleResponse(extracted domain.ExtractedContent, calls []domain.ToolCall) domain.ResponseRecord {
	return domain.ResponseRecord{
		Extracted: extracted,
		ToolCalls: calls,
	}
}
