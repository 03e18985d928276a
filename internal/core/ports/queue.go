package ports

import "context"

// QueueMessage is one received durable-queue message. Messages are
// immutable once enqueued; consumers only interpret and delete them.
type QueueMessage struct {
	ID            string
	ReceiptHandle string
	Body          string
}

// QueueClient is the durable-queue transport. Receive long-polls and
// hides received messages from other consumers for the configured
// visibility timeout; a message that is never deleted becomes eligible
// for redelivery when that timeout expires.
type QueueClient interface {
	Receive(ctx context.Context) ([]QueueMessage, error)

	// DeleteBatch removes all given messages in one batched call.
	DeleteBatch(ctx context.Context, msgs []QueueMessage) error

	// Send enqueues a self-originated message body.
	Send(ctx context.Context, body []byte) error
}
