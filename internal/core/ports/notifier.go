package ports

import "context"

// NotificationPublisher publishes cross-service events to a topic.
type NotificationPublisher interface {
	// PublishFaceVerified announces a successful verification. Callers
	// decide whether a publish failure is fatal; the default policy is
	// log-and-continue.
	PublishFaceVerified(ctx context.Context, userID, verificationID string) error
}
