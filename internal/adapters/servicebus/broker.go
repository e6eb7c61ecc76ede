// Package servicebus publishes channel envelopes to Azure Service Bus queues
// and drains them back.
package servicebus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"github.com/manthysbr/auleServe/internal/core/domain"
	"github.com/manthysbr/auleServe/internal/core/ports"
)

// queueSender is the part of *azservicebus.Sender the broker uses.
type queueSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// connection is one client plus one sender, opened per acquisition.
type connection struct {
	sender      queueSender
	closeClient func(ctx context.Context) error
}

type dialFunc func(queue string) (*connection, error)

// Broker implements ports.ChannelBroker. Each Acquire opens a fresh client
// and sender for the channel's queue; the handle's Close releases both.
type Broker struct {
	logger *slog.Logger
	queues domain.ChannelConfig
	dial   dialFunc
}

var _ ports.ChannelBroker = (*Broker)(nil)

// NewBroker creates a broker for the queues in cfg. The connection string is
// only used when a handle is acquired.
func NewBroker(logger *slog.Logger, cfg domain.ChannelConfig) *Broker {
	connStr := cfg.ConnectionString
	return &Broker{
		logger: logger,
		queues: cfg,
		dial: func(queue string) (*connection, error) {
			client, err := newClient(connStr)
			if err != nil {
				return nil, err
			}
			sender, err := client.NewSender(queue, nil)
			if err != nil {
				_ = client.Close(context.Background())
				return nil, fmt.Errorf("failed to create sender for %s: %w", queue, err)
			}
			return &connection{sender: sender, closeClient: client.Close}, nil
		},
	}
}

// newClient opens a client with SDK retries disabled: each publish is a
// single attempt.
func newClient(connStr string) (*azservicebus.Client, error) {
	if connStr == "" {
		return nil, fmt.Errorf("%w: missing Service Bus connection string", domain.ErrChannelNotConfigured)
	}
	client, err := azservicebus.NewClientFromConnectionString(connStr, &azservicebus.ClientOptions{
		RetryOptions: azservicebus.RetryOptions{MaxRetries: -1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus client: %w", err)
	}
	return client, nil
}

func (b *Broker) Acquire(ctx context.Context, channel domain.Channel) (ports.ChannelHandle, error) {
	queue, ok := b.queues.Queue(channel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrChannelNotConfigured, channel)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := b.dial(queue)
	if err != nil {
		return nil, err
	}
	return &handle{logger: b.logger, queue: queue, conn: conn}, nil
}

type handle struct {
	logger *slog.Logger
	queue  string
	conn   *connection

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

func (h *handle) Publish(ctx context.Context, env domain.Envelope) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return domain.ErrChannelClosed
	}

	msg, err := newMessage(env)
	if err != nil {
		return err
	}
	if err := h.conn.sender.SendMessage(ctx, msg, nil); err != nil {
		return fmt.Errorf("failed to send to queue %s: %w", h.queue, describe(err))
	}

	h.logger.Info("envelope sent", "queue", h.queue, "type", env.Type)
	return nil
}

// Close closes the sender then the client. Safe to call more than once.
func (h *handle) Close(ctx context.Context) error {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()

		h.closeErr = errors.Join(
			h.conn.sender.Close(ctx),
			h.conn.closeClient(ctx),
		)
	})
	return h.closeErr
}

// describe annotates SDK errors with their Service Bus error code.
func describe(err error) error {
	var sbErr *azservicebus.Error
	if errors.As(err, &sbErr) {
		return fmt.Errorf("%s: %w", sbErr.Code, err)
	}
	return err
}
