package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

func TestValidateToolPayload(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.ToolKind
		payload any
		want    bool
	}{
		{"web complete", domain.ToolKindWeb, map[string]any{"q": "x", "k": 1}, true},
		{"web any value types", domain.ToolKindWeb, map[string]any{"q": nil, "k": "three"}, true},
		{"web missing k", domain.ToolKindWeb, map[string]any{"q": "x"}, false},
		{"code complete", domain.ToolKindCode, map[string]any{"cmd": "ls", "cwd": "/", "timeout_s": 5}, true},
		{"code missing timeout", domain.ToolKindCode, map[string]any{"cmd": "ls", "cwd": "/"}, false},
		{"azure list", domain.ToolKindAzure, map[string]any{"args": []any{"account", "show"}}, true},
		{"azure empty list", domain.ToolKindAzure, map[string]any{"args": []any{}}, true},
		{"azure string args", domain.ToolKindAzure, map[string]any{"args": "account show"}, false},
		{"azure raw fallback", domain.ToolKindAzure, map[string]any{RawContentKey: "not-json"}, false},
		{"non-object payload", domain.ToolKindWeb, []any{"q", "k"}, false},
		{"nil payload", domain.ToolKindCode, nil, false},
		{"unknown kind", domain.ToolKind("shell"), map[string]any{"q": "x", "k": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateToolPayload(tt.kind, tt.payload))
		})
	}
}

func TestValidateToolPayload_DoesNotMutate(t *testing.T) {
	payload := map[string]any{"q": "x", "extra": true}
	ValidateToolPayload(domain.ToolKindWeb, payload)
	assert.Equal(t, map[string]any{"q": "x", "extra": true}, payload)
}
