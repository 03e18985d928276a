// Package sqsqueue implements the durable-queue transport on top of SQS.
package sqsqueue

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"

	"faceverify/internal/core/ports"
	"faceverify/internal/shared/config"
)

// API is the subset of the SQS API the client uses.
type API interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type client struct {
	api      API
	queueURL string
	poller   config.PollerConfig
	log      zerolog.Logger
}

var _ ports.QueueClient = (*client)(nil) // Ensure compliance

// NewClient creates the SQS queue client.
func NewClient(api API, queueURL string, poller config.PollerConfig, baseLogger *zerolog.Logger) ports.QueueClient {
	return &client{
		api:      api,
		queueURL: queueURL,
		poller:   poller,
		log:      baseLogger.With().Str("component", "sqs_client").Logger(),
	}
}

// Receive long-polls the queue for up to the configured batch size.
// The wait time keeps us from busy-looping on an empty queue; the
// visibility timeout hides received messages from other consumers while
// they are processed.
func (c *client) Receive(ctx context.Context) ([]ports.QueueMessage, error) {
	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   c.poller.BatchSize,
		WaitTimeSeconds:       int32(c.poller.WaitTime.Seconds()),
		VisibilityTimeout:     int32(c.poller.VisibilityTimeout.Seconds()),
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to receive messages")
		return nil, fmt.Errorf("receive messages: %w", err)
	}

	msgs := make([]ports.QueueMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, ports.QueueMessage{
			ID:            aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          aws.ToString(m.Body),
		})
	}
	return msgs, nil
}

// DeleteBatch removes all given messages in one batched call.
func (c *client) DeleteBatch(ctx context.Context, msgs []ports.QueueMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	entries := make([]types.DeleteMessageBatchRequestEntry, 0, len(msgs))
	for i, m := range msgs {
		entries = append(entries, types.DeleteMessageBatchRequestEntry{
			Id:            aws.String(fmt.Sprintf("msg-%d", i)),
			ReceiptHandle: aws.String(m.ReceiptHandle),
		})
	}

	out, err := c.api.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
		QueueUrl: aws.String(c.queueURL),
		Entries:  entries,
	})
	if err != nil {
		c.log.Error().Err(err).Int("count", len(msgs)).Msg("Failed to delete message batch")
		return fmt.Errorf("delete message batch: %w", err)
	}
	for _, f := range out.Failed {
		// A partially failed delete means those messages will redeliver;
		// handlers are idempotent, so log only.
		c.log.Warn().
			Str("entry_id", aws.ToString(f.Id)).
			Str("code", aws.ToString(f.Code)).
			Msg("Delete failed for one message in batch")
	}
	return nil
}

// Send enqueues a self-originated message body.
func (c *client) Send(ctx context.Context, body []byte) error {
	_, err := c.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to send message")
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
