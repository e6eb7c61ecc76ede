package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/manthysbr/auleServe/internal/core/domain"
	"github.com/manthysbr/auleServe/internal/core/ports"
)

// EventBus is an in-process channel broker. Envelopes published on a
// channel fan out to its current subscribers; with no subscribers they are
// dropped.
type EventBus struct {
	logger *slog.Logger
	mu     sync.RWMutex
	subs   map[domain.Channel][]chan domain.Envelope
	closed bool
}

var _ ports.ChannelBroker = (*EventBus)(nil)

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		logger: logger,
		subs:   make(map[domain.Channel][]chan domain.Envelope),
	}
}

// Subscribe returns a channel that receives envelopes for a channel
func (b *EventBus) Subscribe(channel domain.Channel) (<-chan domain.Envelope, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.Envelope, 100) // Buffer to prevent blocking publisher
	b.subs[channel] = append(b.subs[channel], ch)

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			subscribers := b.subs[channel]
			for i, sub := range subscribers {
				if sub == ch {
					close(ch)
					b.subs[channel] = append(subscribers[:i], subscribers[i+1:]...)
					break
				}
			}
			if len(b.subs[channel]) == 0 {
				delete(b.subs, channel)
			}
		})
	}

	return ch, unsub
}

// Acquire returns a handle bound to channel. Only web and azure exist.
func (b *EventBus) Acquire(ctx context.Context, channel domain.Channel) (ports.ChannelHandle, error) {
	switch channel {
	case domain.ChannelWeb, domain.ChannelAzure:
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrChannelNotConfigured, channel)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, domain.ErrChannelClosed
	}
	return &busHandle{bus: b, channel: channel}, nil
}

// Close closes every subscriber channel; later Acquire calls fail.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for channel, subscribers := range b.subs {
		for _, ch := range subscribers {
			close(ch)
		}
		delete(b.subs, channel)
	}
}

func (b *EventBus) publish(ctx context.Context, channel domain.Channel, env domain.Envelope) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return domain.ErrChannelClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, ch := range b.subs[channel] {
		select {
		case ch <- env:
		default:
			// If channel is full, drop envelope to prevent blocking the router
			b.logger.Warn("event bus channel full, dropping envelope", "channel", channel)
		}
	}
	return nil
}

type busHandle struct {
	bus     *EventBus
	channel domain.Channel

	mu     sync.Mutex
	closed bool
}

func (h *busHandle) Publish(ctx context.Context, env domain.Envelope) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return domain.ErrChannelClosed
	}
	return h.bus.publish(ctx, h.channel, env)
}

func (h *busHandle) Close(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
