package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/manthysbr/auleServe/internal/core/domain"
	"github.com/manthysbr/auleServe/internal/core/ports"
)

const tracerName = "auleserve/llm"

// OpenAIClient implements ports.ChatClient against an OpenAI-compatible API
// Works with: vLLM (`vllm serve --api-key`), OpenAI, Together AI, Ollama /v1, etc.
type OpenAIClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

var _ ports.ChatClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a new OpenAI-compatible client. A zero timeout
// falls back to 60s.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

type openAIRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete calls /chat/completions and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, messages []domain.ChatMessage) (domain.ChatCompletion, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.OpenAIClient.Complete",
		trace.WithAttributes(
			attribute.String("provider", "openai"),
			attribute.String("model", c.model),
			attribute.Int("message_count", len(messages)),
		),
	)
	defer span.End()

	completion, err := c.complete(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ChatCompletion{}, err
	}
	return completion, nil
}

func (c *OpenAIClient) complete(ctx context.Context, messages []domain.ChatMessage) (domain.ChatCompletion, error) {
	url := fmt.Sprintf("%s/chat/completions", c.baseURL)

	payloadBytes, err := json.Marshal(openAIRequest{Model: c.model, Messages: messages})
	if err != nil {
		return domain.ChatCompletion{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return domain.ChatCompletion{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ChatCompletion{}, fmt.Errorf("failed to call API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.ChatCompletion{}, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.ChatCompletion{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return domain.ChatCompletion{}, domain.ErrEmptyCompletion
	}

	choice := result.Choices[0]
	completion := domain.ChatCompletion{
		Model:        result.Model,
		Role:         choice.Message.Role,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}
	if result.Usage != nil {
		completion.Usage = domain.Usage{
			PromptTokens:     &result.Usage.PromptTokens,
			CompletionTokens: &result.Usage.CompletionTokens,
			TotalTokens:      &result.Usage.TotalTokens,
		}
	}
	return completion, nil
}
