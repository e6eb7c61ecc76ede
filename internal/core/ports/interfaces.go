package ports

import (
	"context"
	"time"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

// ChatClient abstracts the chat completion backend (vLLM, OpenAI, Ollama).
type ChatClient interface {
	// Complete sends the messages and returns the first choice.
	// Returns domain.ErrEmptyCompletion when the backend produced no choice.
	Complete(ctx context.Context, messages []domain.ChatMessage) (domain.ChatCompletion, error)
}

// ChannelBroker hands out scoped publishing handles for logical channels
// (Azure Service Bus queues, in-process bus).
type ChannelBroker interface {
	// Acquire opens a handle on the channel. The caller must Close it on
	// every path, including after a failed Publish.
	// Returns domain.ErrChannelNotConfigured for unknown channels.
	Acquire(ctx context.Context, channel domain.Channel) (ChannelHandle, error)
}

// ChannelHandle publishes envelopes until closed.
type ChannelHandle interface {
	Publish(ctx context.Context, env domain.Envelope) error

	// Close releases the client resources behind the handle.
	Close(ctx context.Context) error
}

// ChannelReceiver drains messages from a channel queue.
type ChannelReceiver interface {
	// Receive waits up to wait for at most maxMessages messages. Messages that
	// decode are settled as complete; undecodable ones are dead-lettered.
	Receive(ctx context.Context, channel domain.Channel, maxMessages int, wait time.Duration) ([]domain.ReceivedMessage, error)
}
