package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"faceverify/internal/core/ports"
	"faceverify/internal/shared/metrics"
)

// BatchHandler processes one received batch as a unit. A non-nil error
// means the batch must not be deleted, so the queue redelivers it after
// the visibility timeout expires.
type BatchHandler interface {
	HandleBatch(ctx context.Context, msgs []ports.QueueMessage) error
}

// Consumer drains the durable queue on a fixed cadence. The ticker fires
// regardless of how long the previous cycle is taking, so cycles may
// overlap; idempotency lives in the handlers, not here. Redelivery via
// the visibility timeout is the sole retry mechanism; the consumer keeps
// no retry or backoff state.
type Consumer struct {
	queue    ports.QueueClient
	handler  BatchHandler
	interval time.Duration
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewConsumer creates the queue consumer.
func NewConsumer(
	queue ports.QueueClient,
	handler BatchHandler,
	interval time.Duration,
	m *metrics.Metrics,
	baseLogger *zerolog.Logger,
) *Consumer {
	return &Consumer{
		queue:    queue,
		handler:  handler,
		interval: interval,
		metrics:  m,
		log:      baseLogger.With().Str("component", "queue_consumer").Logger(),
	}
}

// Run polls until the context is cancelled. It blocks the calling
// goroutine; start it with `go consumer.Run(ctx)` from main.
func (c *Consumer) Run(ctx context.Context) {
	c.log.Info().Dur("interval", c.interval).Msg("Queue consumer started")

	// Poll immediately, then on every tick.
	go c.pollOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("Queue consumer stopped")
			return
		case <-ticker.C:
			go c.pollOnce(ctx)
		}
	}
}

// pollOnce runs a single receive/handle/delete cycle. The batch is
// deleted only when the handler accepted it; otherwise the messages
// become visible again and redeliver.
func (c *Consumer) pollOnce(ctx context.Context) {
	msgs, err := c.queue.Receive(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("Receive failed, will poll again next cycle")
		return
	}
	if len(msgs) == 0 {
		return
	}

	c.log.Info().Int("count", len(msgs)).Msg("Received message batch")
	c.metrics.MessagesReceived.Add(float64(len(msgs)))

	if err := c.handler.HandleBatch(ctx, msgs); err != nil {
		c.log.Error().Err(err).Msg("Batch handler failed, leaving messages for redelivery")
		return
	}

	if err := c.queue.DeleteBatch(ctx, msgs); err != nil {
		// Handlers already ran; the redelivered messages will hit the
		// idempotency guards.
		c.log.Error().Err(err).Msg("Failed to delete processed batch")
	}
}
