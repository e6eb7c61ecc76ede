package services

import (
	"strings"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

const (
	tagThink    = "think"
	tagSolution = "solution"
)

// ExtractTags pulls reasoning and solution out of raw model output.
//
// Only the first pair of each tag fills the structured field, but every pair
// of both tags is removed from CleanContent. Pairs are searched in the raw
// input and removed from the progressively cleaned text, think first.
func ExtractTags(raw string) domain.ExtractedContent {
	var out domain.ExtractedContent
	clean := raw

	if inner, ok := firstTagBlock(raw, tagThink); ok {
		out.Reasoning = nonEmpty(inner)
		clean = stripTagBlocks(clean, tagThink)
	}
	if inner, ok := firstTagBlock(raw, tagSolution); ok {
		out.Solution = nonEmpty(inner)
		clean = stripTagBlocks(clean, tagSolution)
	}

	out.CleanContent = strings.TrimSpace(clean)
	return out
}

// firstTagBlock returns the trimmed inner text of the first <tag>...</tag>
// pair, using the shortest span from the first opening tag to the next
// closing tag. Content may span lines.
func firstTagBlock(text, tag string) (string, bool) {
	openTag, closeTag := "<"+tag+">", "</"+tag+">"

	start := strings.Index(text, openTag)
	if start < 0 {
		return "", false
	}
	body := text[start+len(openTag):]
	end := strings.Index(body, closeTag)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(body[:end]), true
}

// stripTagBlocks removes every complete <tag>...</tag> pair, scanning left
// to right without overlap. Unclosed openings are left untouched.
func stripTagBlocks(text, tag string) string {
	openTag, closeTag := "<"+tag+">", "</"+tag+">"

	var b strings.Builder
	rest := text
	for {
		start := strings.Index(rest, openTag)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(openTag):], closeTag)
		if end < 0 {
			break
		}
		b.WriteString(rest[:start])
		rest = rest[start+len(openTag)+end+len(closeTag):]
	}
	b.WriteString(rest)
	return b.String()
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
