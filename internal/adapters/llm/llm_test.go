package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

var testMessages = []domain.ChatMessage{
	{Role: domain.RoleSystem, Content: "sys"},
	{Role: domain.RoleUser, Content: "task"},
}

func TestOpenAIClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer token-abc123", r.Header.Get("Authorization"))

		var req openAIRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen-lora", req.Model)
		assert.Equal(t, testMessages, req.Messages)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"model":"qwen-lora","choices":[{"index":0,"message":{"role":"assistant","content":"<think>a</think>b"},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":7,"total_tokens":12}}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL+"/v1/", "token-abc123", "qwen-lora", time.Second)
	got, err := client.Complete(context.Background(), testMessages)
	require.NoError(t, err)

	assert.Equal(t, "qwen-lora", got.Model)
	assert.Equal(t, "assistant", got.Role)
	assert.Equal(t, "<think>a</think>b", got.Content)
	require.NotNil(t, got.FinishReason)
	assert.Equal(t, "stop", *got.FinishReason)
	require.NotNil(t, got.Usage.TotalTokens)
	assert.Equal(t, 12, *got.Usage.TotalTokens)
}

func TestOpenAIClient_NoUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"model":"m","choices":[{"message":{"role":"assistant","content":"hi"},"finish_reason":null}]}`)
	}))
	defer server.Close()

	got, err := NewOpenAIClient(server.URL, "", "m", 0).Complete(context.Background(), testMessages)
	require.NoError(t, err)
	assert.Nil(t, got.Usage.PromptTokens)
	assert.Nil(t, got.FinishReason)
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"status", http.StatusUnauthorized, `{"error":"bad key"}`, nil},
		{"no choices", http.StatusOK, `{"model":"m","choices":[]}`, domain.ErrEmptyCompletion},
		{"bad body", http.StatusOK, `not json`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			_, err := NewOpenAIClient(server.URL, "k", "m", time.Second).Complete(context.Background(), testMessages)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestOllamaClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "qwen2.5:latest", req.Model)

		fmt.Fprint(w, `{"model":"qwen2.5:latest","message":{"role":"assistant","content":"<solution>ok</solution>"},"done":true,"done_reason":"stop","prompt_eval_count":3,"eval_count":4}`)
	}))
	defer server.Close()

	got, err := NewOllamaClient(server.URL+"/", "qwen2.5:latest", time.Second).Complete(context.Background(), testMessages)
	require.NoError(t, err)

	assert.Equal(t, "<solution>ok</solution>", got.Content)
	assert.Equal(t, "stop", *got.FinishReason)
	assert.Equal(t, 3, *got.Usage.PromptTokens)
	assert.Equal(t, 7, *got.Usage.TotalTokens)
}

func TestOllamaClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewOllamaClient(server.URL, "m", time.Second).Complete(context.Background(), testMessages)
	assert.ErrorContains(t, err, "ollama returned status: 500")
}
