package servicebus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"github.com/manthysbr/auleServe/internal/core/domain"
	"github.com/manthysbr/auleServe/internal/core/ports"
)

// messageReceiver is the part of *azservicebus.Receiver the drain uses.
type messageReceiver interface {
	ReceiveMessages(ctx context.Context, maxMessages int, options *azservicebus.ReceiveMessagesOptions) ([]*azservicebus.ReceivedMessage, error)
	CompleteMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.CompleteMessageOptions) error
	DeadLetterMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.DeadLetterOptions) error
	Close(ctx context.Context) error
}

type openReceiverFunc func(queue string) (messageReceiver, func(ctx context.Context) error, error)

// Receiver implements ports.ChannelReceiver on Service Bus queues.
type Receiver struct {
	logger *slog.Logger
	queues domain.ChannelConfig
	open   openReceiverFunc
}

var _ ports.ChannelReceiver = (*Receiver)(nil)

func NewReceiver(logger *slog.Logger, cfg domain.ChannelConfig) *Receiver {
	connStr := cfg.ConnectionString
	return &Receiver{
		logger: logger,
		queues: cfg,
		open: func(queue string) (messageReceiver, func(ctx context.Context) error, error) {
			client, err := newClient(connStr)
			if err != nil {
				return nil, nil, err
			}
			receiver, err := client.NewReceiverForQueue(queue, nil)
			if err != nil {
				_ = client.Close(context.Background())
				return nil, nil, fmt.Errorf("failed to create receiver for %s: %w", queue, err)
			}
			return receiver, client.Close, nil
		},
	}
}

// Receive waits up to wait for at most maxMessages messages on the channel queue.
// Decodable messages are completed and returned; the rest are dead-lettered.
// Reaching the wait without any message is not an error.
func (r *Receiver) Receive(ctx context.Context, channel domain.Channel, maxMessages int, wait time.Duration) ([]domain.ReceivedMessage, error) {
	queue, ok := r.queues.Queue(channel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrChannelNotConfigured, channel)
	}
	if maxMessages <= 0 {
		maxMessages = 1
	}

	receiver, closeClient, err := r.open(queue)
	if err != nil {
		return nil, err
	}
	defer func() {
		release := context.WithoutCancel(ctx)
		if err := errors.Join(receiver.Close(release), closeClient(release)); err != nil {
			r.logger.Warn("failed to close receiver", "queue", queue, "error", err)
		}
	}()

	waitCtx := ctx
	if wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}

	msgs, err := receiver.ReceiveMessages(waitCtx, maxMessages, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return []domain.ReceivedMessage{}, nil
		}
		return nil, fmt.Errorf("failed to receive from queue %s: %w", queue, describe(err))
	}

	out := make([]domain.ReceivedMessage, 0, len(msgs))
	for _, msg := range msgs {
		data, err := decodeBody(msg.Body)
		if err != nil {
			r.logger.Error("failed to parse message, dead-lettering", "queue", queue, "message_id", msg.MessageID, "error", err)
			if dlErr := receiver.DeadLetterMessage(ctx, msg, nil); dlErr != nil {
				r.logger.Error("failed to dead-letter message", "queue", queue, "message_id", msg.MessageID, "error", dlErr)
			}
			continue
		}

		if err := receiver.CompleteMessage(ctx, msg, nil); err != nil {
			r.logger.Error("failed to complete message", "queue", queue, "message_id", msg.MessageID, "error", err)
			continue
		}
		r.logger.Info("message received and completed", "queue", queue, "message_id", msg.MessageID)

		out = append(out, domain.ReceivedMessage{
			Data:          data,
			MessageID:     msg.MessageID,
			DeliveryCount: msg.DeliveryCount,
		})
	}
	return out, nil
}
