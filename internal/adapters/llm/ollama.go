package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
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

// OllamaClient implements ports.ChatClient for a local Ollama instance
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ ports.ChatClient = (*OllamaClient)(nil)

func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatResponse struct {
	Model   string             `json:"model"`
	Message domain.ChatMessage `json:"message"`
	Done    bool               `json:"done"`

	DoneReason      *string `json:"done_reason"`
	PromptEvalCount *int    `json:"prompt_eval_count"`
	EvalCount       *int    `json:"eval_count"`
}

func (c *OllamaClient) Complete(ctx context.Context, messages []domain.ChatMessage) (domain.ChatCompletion, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.OllamaClient.Complete",
		trace.WithAttributes(
			attribute.String("provider", "ollama"),
			attribute.String("model", c.model),
			attribute.Int("message_count", len(messages)),
		),
	)
	defer span.End()

	completion, err := c.chat(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ChatCompletion{}, err
	}
	return completion, nil
}

func (c *OllamaClient) chat(ctx context.Context, messages []domain.ChatMessage) (domain.ChatCompletion, error) {
	jsonData, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return domain.ChatCompletion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return domain.ChatCompletion{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ChatCompletion{}, fmt.Errorf("ollama connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ChatCompletion{}, fmt.Errorf("ollama returned status: %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return domain.ChatCompletion{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if chatResp.Message.Role == "" && chatResp.Message.Content == "" {
		return domain.ChatCompletion{}, domain.ErrEmptyCompletion
	}

	completion := domain.ChatCompletion{
		Model:        chatResp.Model,
		Role:         chatResp.Message.Role,
		Content:      chatResp.Message.Content,
		FinishReason: chatResp.DoneReason,
		Usage: domain.Usage{
			PromptTokens:     chatResp.PromptEvalCount,
			CompletionTokens: chatResp.EvalCount,
		},
	}
	if chatResp.PromptEvalCount != nil && chatResp.EvalCount != nil {
		total := *chatResp.PromptEvalCount + *chatResp.EvalCount
		completion.Usage.TotalTokens = &total
	}
	return completion, nil
}
