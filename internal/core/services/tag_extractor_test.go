package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		reasoning *string
		solution  *string
		content   string
	}{
		{
			name:    "no tags",
			input:   "  plain answer \n",
			content: "plain answer",
		},
		{
			name:      "think and solution",
			input:     "<think>A</think><solution>B</solution>",
			reasoning: ptr("A"),
			solution:  ptr("B"),
			content:   "",
		},
		{
			name:      "multi-line think with surrounding text",
			input:     "before\n<think>\nline one\nline two\n</think>\nafter",
			reasoning: ptr("line one\nline two"),
			content:   "before\n\nafter",
		},
		{
			name:      "only first think captured, all stripped",
			input:     "<think>first</think> middle <think>second</think> end",
			reasoning: ptr("first"),
			content:   "middle  end",
		},
		{
			name:     "only first solution captured, all stripped",
			input:    "<solution>one</solution>x<solution>two</solution>",
			solution: ptr("one"),
			content:  "x",
		},
		{
			name:    "empty think is unset but still stripped",
			input:   "<think>   </think>answer",
			content: "answer",
		},
		{
			name:    "unclosed think passes through",
			input:   "<think>never closed",
			content: "<think>never closed",
		},
		{
			name:      "non-greedy span",
			input:     "<think>a</think>b</think>",
			reasoning: ptr("a"),
			content:   "b</think>",
		},
		{
			name:    "case-sensitive tags",
			input:   "<THINK>loud</THINK>",
			content: "<THINK>loud</THINK>",
		},
		{
			name:      "solution found in raw even when spanning a think block",
			input:     "<solution>x<think>y</think>z</solution>",
			reasoning: ptr("y"),
			solution:  ptr("x<think>y</think>z"),
			content:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTags(tt.input)
			assert.Equal(t, tt.reasoning, got.Reasoning)
			assert.Equal(t, tt.solution, got.Solution)
			assert.Equal(t, tt.content, got.CleanContent)
		})
	}
}

func TestExtractTags_CleanContentHasNoPairs(t *testing.T) {
	input := "<think>1</think><solution>2</solution><think>3</think> text <solution>4</solution>"
	got := ExtractTags(input)

	require.NotNil(t, got.Reasoning)
	assert.Equal(t, "1", *got.Reasoning)
	assert.Equal(t, "text", got.CleanContent)
	assert.NotContains(t, got.CleanContent, "<think>")
	assert.NotContains(t, got.CleanContent, "<solution>")
}

func TestFirstTagBlock(t *testing.T) {
	inner, ok := firstTagBlock("x <web> a </web> <web>b</web>", "web")
	assert.True(t, ok)
	assert.Equal(t, "a", inner)

	_, ok = firstTagBlock("<web>open only", "web")
	assert.False(t, ok)

	_, ok = firstTagBlock("</web>close first", "web")
	assert.False(t, ok)
}

func TestStripTagBlocks(t *testing.T) {
	assert.Equal(t, "a  c", stripTagBlocks("a <x>1</x> c", "x"))
	assert.Equal(t, "ab", stripTagBlocks("a<x>1</x><x>2</x>b", "x"))
	assert.Equal(t, "a<x>open", stripTagBlocks("a<x>1</x><x>open", "x"))
	assert.Equal(t, "nothing", stripTagBlocks("nothing", "x"))
}

func ptr(s string) *string { return &s }
