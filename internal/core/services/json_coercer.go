package services

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

// RawContentKey is the single key of the fallback payload used when a tool
// body is not valid JSON.
const RawContentKey = "rawContent"

// CoercePayload decodes the trimmed tool body as JSON. Numbers are kept as
// json.Number so they re-encode unchanged. It never fails: undecodable text
// becomes {"rawContent": text} and a warning is logged.
func CoercePayload(logger *slog.Logger, kind domain.ToolKind, raw string) any {
	trimmed := strings.TrimSpace(raw)

	payload, err := decodeJSON(trimmed)
	if err != nil {
		logger.Warn("failed to parse tool content as JSON",
			"kind", kind,
			"error", err,
		)
		coercionFallbacks.WithLabelValues(string(kind)).Inc()
		return map[string]any{RawContentKey: trimmed}
	}
	return payload
}

func decodeJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}
