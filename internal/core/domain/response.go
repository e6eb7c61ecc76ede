package domain

import (
	"bytes"
	"encoding/json"
)

// ExtractedContent is the result of reasoning/solution extraction.
// CleanContent never contains a complete think or solution pair.
type ExtractedContent struct {
	Reasoning    *string
	Solution     *string
	CleanContent string
}

// ResponseRecord is the structured form of one model output.
type ResponseRecord struct {
	Extracted ExtractedContent
	ToolCalls []ToolCall
}

func (r ResponseRecord) HasTools() bool {
	return len(r.ToolCalls) > 0
}

// ValidTools returns the valid calls in original order.
func (r ResponseRecord) ValidTools() []ToolCall {
	return r.partition(true)
}

// InvalidTools returns the invalid calls in original order.
func (r ResponseRecord) InvalidTools() []ToolCall {
	return r.partition(false)
}

func (r ResponseRecord) partition(valid bool) []ToolCall {
	out := make([]ToolCall, 0, len(r.ToolCalls))
	for _, tc := range r.ToolCalls {
		if tc.IsValid == valid {
			out = append(out, tc)
		}
	}
	return out
}

type responseRecordJSON struct {
	Reasoning    *string    `json:"reasoning"`
	Solution     *string    `json:"solution"`
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"toolCalls"`
	HasTools     bool       `json:"hasTools"`
	ValidTools   []ToolCall `json:"validTools"`
	InvalidTools []ToolCall `json:"invalidTools"`
}

func (r ResponseRecord) toJSON() responseRecordJSON {
	var calls []ToolCall
	if r.HasTools() {
		calls = r.ToolCalls
	}
	return responseRecordJSON{
		Reasoning:    r.Extracted.Reasoning,
		Solution:     r.Extracted.Solution,
		Content:      r.Extracted.CleanContent,
		ToolCalls:    calls,
		HasTools:     r.HasTools(),
		ValidTools:   r.ValidTools(),
		InvalidTools: r.InvalidTools(),
	}
}

// MarshalJSON renders the record with toolCalls null when there are no
// calls and the partitions always present as arrays. Tag text in content is
// written as-is, not HTML-escaped.
func (r ResponseRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.toJSON()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
