package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/manthysbr/auleServe/internal/core/domain"
	"github.com/manthysbr/auleServe/internal/core/ports"
)

// ChannelRouter publishes valid tool calls to their channels. Every call is
// handled in isolation: a failure or panic on one never stops the rest.
type ChannelRouter struct {
	logger         *slog.Logger
	broker         ports.ChannelBroker
	publishTimeout time.Duration
}

// NewChannelRouter creates a router. A zero publishTimeout leaves publish
// contexts unbounded.
func NewChannelRouter(logger *slog.Logger, broker ports.ChannelBroker, publishTimeout time.Duration) *ChannelRouter {
	return &ChannelRouter{
		logger:         logger,
		broker:         broker,
		publishTimeout: publishTimeout,
	}
}

// Dispatch walks calls in order and makes at most one publish attempt per
// valid routable call. An empty requestID falls back to the one attached to
// ctx.
func (r *ChannelRouter) Dispatch(ctx context.Context, calls []domain.ToolCall, requestID string) domain.DispatchReport {
	if requestID == "" {
		requestID = RequestIDFromContext(ctx)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "services.ChannelRouter.Dispatch",
		trace.WithAttributes(
			attribute.Int("tool_calls", len(calls)),
			attribute.String("request_id", requestID),
		),
	)
	defer span.End()

	report := domain.DispatchReport{Outcomes: make([]domain.DispatchOutcome, 0, len(calls))}
	for i, call := range calls {
		outcome := r.dispatchOne(ctx, i, call, requestID)
		dispatchTotal.WithLabelValues(string(outcome.Channel), string(outcome.Status)).Inc()
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if failed := report.Count(domain.DispatchFailed); failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d publish failures", failed))
	}
	return report
}

func (r *ChannelRouter) dispatchOne(ctx context.Context, index int, call domain.ToolCall, requestID string) (outcome domain.DispatchOutcome) {
	outcome = domain.DispatchOutcome{Index: index, Kind: call.Kind}
	log := r.logger.With("index", index, "kind", call.Kind, "request_id", requestID)

	defer func() {
		if v := recover(); v != nil {
			err := &domain.DispatchPanicError{Value: v}
			log.Error("tool call dispatch panicked", "error", err)
			outcome.Status = domain.DispatchFailed
			outcome.Err = err
			outcome.Error = err.Error()
		}
	}()

	if !call.IsValid {
		log.Warn("skipping invalid tool call")
		outcome.Status = domain.DispatchSkippedInvalid
		return outcome
	}

	var (
		channel domain.Channel
		envType string
	)
	switch call.Kind {
	case domain.ToolKindWeb:
		channel, envType = domain.ChannelWeb, domain.EnvelopeTypeWeb
	case domain.ToolKindAzure:
		channel, envType = domain.ChannelAzure, domain.EnvelopeTypeAzure
	case domain.ToolKindCode:
		// No execution channel exists for code; parsed and validated only.
		log.Info("code tool call has no channel, not routed")
		outcome.Status = domain.DispatchNotRouted
		return outcome
	default:
		log.Warn("unknown tool kind, not routed")
		outcome.Status = domain.DispatchNotRouted
		return outcome
	}
	outcome.Channel = channel

	args, ok := domain.ParseToolArgs(call.Kind, call.Payload)
	if !ok {
		log.Warn("tool call flagged valid but payload does not match its kind, skipping")
		outcome.Status = domain.DispatchSkippedInvalid
		return outcome
	}

	env := domain.NewEnvelope(envType, requestID, args.ChannelData())
	if err := r.publish(ctx, channel, env); err != nil {
		log.Error("failed to publish tool call", "channel", channel, "error", err)
		outcome.Status = domain.DispatchFailed
		outcome.Err = err
		outcome.Error = err.Error()
		return outcome
	}

	log.Info("tool call published", "channel", channel, "type", envType)
	outcome.Status = domain.DispatchPublished
	return outcome
}

// publish acquires a handle for one send and releases it on every path.
func (r *ChannelRouter) publish(ctx context.Context, channel domain.Channel, env domain.Envelope) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "services.ChannelRouter.publish",
		trace.WithAttributes(
			attribute.String("channel", string(channel)),
			attribute.String("envelope_type", env.Type),
		),
	)
	start := time.Now()
	defer func() {
		publishLatencySeconds.WithLabelValues(string(channel)).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if r.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.publishTimeout)
		defer cancel()
	}

	handle, err := r.broker.Acquire(ctx, channel)
	if err != nil {
		return fmt.Errorf("acquire %s channel: %w", channel, err)
	}
	defer func() {
		// Release even when ctx is already done.
		if cerr := handle.Close(context.WithoutCancel(ctx)); cerr != nil {
			r.logger.Warn("failed to release channel handle", "channel", channel, "error", cerr)
		}
	}()

	if err := handle.Publish(ctx, env); err != nil {
		return fmt.Errorf("publish to %s channel: %w", channel, err)
	}
	return nil
}
