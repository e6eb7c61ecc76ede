package services

import (
	"strings"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

// RawToolCall is one tool tag occurrence before coercion.
type RawToolCall struct {
	Kind    domain.ToolKind
	Content string
}

// ScanToolCalls finds every web, code and azure tag pair in raw.
// Output is grouped by kind (all web, then code, then azure), each group in
// document order. Unclosed tags and unknown tag names are ignored.
func ScanToolCalls(raw string) []RawToolCall {
	var calls []RawToolCall
	for _, kind := range domain.ToolKinds {
		for _, inner := range allTagBlocks(raw, string(kind)) {
			calls = append(calls, RawToolCall{Kind: kind, Content: inner})
		}
	}
	return calls
}

// allTagBlocks returns the trimmed inner text of each non-overlapping
// <tag>...</tag> pair in document order.
func allTagBlocks(text, tag string) []string {
	openTag, closeTag := "<"+tag+">", "</"+tag+">"

	var blocks []string
	rest := text
	for {
		start := strings.Index(rest, openTag)
		if start < 0 {
			return blocks
		}
		body := rest[start+len(openTag):]
		end := strings.Index(body, closeTag)
		if end < 0 {
			return blocks
		}
		blocks = append(blocks, strings.TrimSpace(body[:end]))
		rest = body[end+len(closeTag):]
	}
}
