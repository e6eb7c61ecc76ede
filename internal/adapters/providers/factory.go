package providers

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/manthysbr/auleServe/internal/adapters/llm"
	"github.com/manthysbr/auleServe/internal/adapters/servicebus"
	"github.com/manthysbr/auleServe/internal/core/domain"
	"github.com/manthysbr/auleServe/internal/core/ports"
	"github.com/manthysbr/auleServe/internal/core/services"
)

// BuildChatClient creates the chat backend selected by llm.mode.
func BuildChatClient(config *domain.AppConfig) (ports.ChatClient, error) {
	if config == nil {
		config = domain.DefaultConfig()
	}
	cfg := config.LLM

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	switch mode {
	case "", "openai":
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return nil, fmt.Errorf("llm base_url is required when mode=openai")
		}
		return llm.NewOpenAIClient(
			strings.TrimSpace(cfg.BaseURL),
			strings.TrimSpace(cfg.APIKey),
			strings.TrimSpace(cfg.Model),
			cfg.Timeout,
		), nil
	case "ollama":
		baseURL := strings.TrimSpace(os.Getenv("OLLAMA_HOST"))
		if baseURL == "" {
			baseURL = strings.TrimSpace(cfg.BaseURL)
		}
		return llm.NewOllamaClient(normalizeOllamaBaseURL(baseURL), strings.TrimSpace(cfg.Model), cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported llm mode: %s", cfg.Mode)
	}
}

// Channels bundles the broker and receiver for the configured transport.
// Bus is set only for the memory transport.
type Channels struct {
	Broker   ports.ChannelBroker
	Receiver ports.ChannelReceiver
	Bus      *services.EventBus
}

// BuildChannels creates the channel transport selected by channels.transport.
func BuildChannels(logger *slog.Logger, config *domain.AppConfig) (Channels, error) {
	if config == nil {
		config = domain.DefaultConfig()
	}
	cfg := config.Channels

	transport := strings.ToLower(strings.TrimSpace(cfg.Transport))
	switch transport {
	case "", "servicebus":
		return Channels{
			Broker:   servicebus.NewBroker(logger, cfg),
			Receiver: servicebus.NewReceiver(logger, cfg),
		}, nil
	case "memory":
		bus := services.NewEventBus(logger)
		return Channels{Broker: bus, Bus: bus}, nil
	default:
		return Channels{}, fmt.Errorf("unsupported channel transport: %s", cfg.Transport)
	}
}

func normalizeOllamaBaseURL(baseURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return strings.TrimSuffix(trimmed, "/v1")
	}
	return trimmed
}
