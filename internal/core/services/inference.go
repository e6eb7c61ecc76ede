package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/manthysbr/auleServe/internal/core/domain"
	"github.com/manthysbr/auleServe/internal/core/ports"
)

// DefaultTask is the user task sent when none is given.
const DefaultTask = "Find the official Microsoft doc that shows how to print the current Azure subscription name using the CLI, " +
	"remember the exact command from that doc, then in /workspace create a file hello.txt containing hello world and read it back, " +
	"then run the Azure command to print the subscription name. Finally, report (1) the file's contents, " +
	"(2) the subscription name you retrieved, and (3) the URL of the doc you used."

// InferenceService runs one task through the model and routes the tool
// calls found in its answer.
type InferenceService struct {
	logger       *slog.Logger
	chat         ports.ChatClient
	parser       *ResponseParser
	router       *ChannelRouter
	systemPrompt string
}

// NewInferenceService wires the pipeline. router may be nil, in which case
// tool calls are parsed but never dispatched.
func NewInferenceService(logger *slog.Logger, chat ports.ChatClient, parser *ResponseParser, router *ChannelRouter, systemPrompt string) *InferenceService {
	return &InferenceService{
		logger:       logger,
		chat:         chat,
		parser:       parser,
		router:       router,
		systemPrompt: systemPrompt,
	}
}

// Run sends [system, user] to the chat backend, parses the first choice and
// dispatches its tool calls. Only a failed completion is returned as error.
func (s *InferenceService) Run(ctx context.Context, task string) (domain.ServeResult, error) {
	if strings.TrimSpace(task) == "" {
		task = DefaultTask
	}

	requestID := uuid.NewString()
	ctx = ContextWithRequestID(ctx, requestID)
	log := s.logger.With("request_id", requestID)

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: s.systemPrompt},
		{Role: domain.RoleUser, Content: task},
	}

	log.Info("requesting completion", "messages", len(messages))
	start := time.Now()
	completion, err := s.chat.Complete(ctx, messages)
	completionLatencySeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.ServeResult{}, fmt.Errorf("failed to complete chat: %w", err)
	}

	record := s.parser.Parse(ctx, completion.Content)
	log.Info("completion parsed",
		"model", completion.Model,
		"tool_calls", len(record.ToolCalls),
		"invalid_tools", len(record.InvalidTools()),
	)

	result := domain.NewServeResult(requestID, completion, record)
	if s.router != nil && record.HasTools() {
		report := s.router.Dispatch(ctx, record.ToolCalls, requestID)
		result.Dispatch = &report
	}
	return result, nil
}
