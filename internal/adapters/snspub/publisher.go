// Package snspub implements the notification publisher on top of SNS.
package snspub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"

	"faceverify/internal/core/domain"
	"faceverify/internal/core/ports"
)

// API is the subset of the SNS API the publisher uses.
type API interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type publisher struct {
	api      API
	topicARN string
	log      zerolog.Logger
}

var _ ports.NotificationPublisher = (*publisher)(nil) // Ensure compliance

// NewPublisher creates the SNS notification publisher.
func NewPublisher(api API, topicARN string, baseLogger *zerolog.Logger) ports.NotificationPublisher {
	return &publisher{
		api:      api,
		topicARN: topicARN,
		log:      baseLogger.With().Str("component", "sns_publisher").Logger(),
	}
}

// PublishFaceVerified announces a successful verification on the verify topic.
func (p *publisher) PublishFaceVerified(ctx context.Context, userID, verificationID string) error {
	body, err := json.Marshal(domain.FaceVerifiedEvent{
		UserID:         userID,
		VerificationID: verificationID,
		EventType:      domain.EventUserFaceVerified,
	})
	if err != nil {
		return fmt.Errorf("marshal face-verified event: %w", err)
	}

	out, err := p.api.Publish(ctx, &sns.PublishInput{
		Message:  aws.String(string(body)),
		TopicArn: aws.String(p.topicARN),
	})
	if err != nil {
		p.log.Error().Err(err).Str("user_id", userID).Msg("Failed to publish face-verified event")
		return fmt.Errorf("publish face-verified event: %w", err)
	}

	p.log.Info().
		Str("message_id", aws.ToString(out.MessageId)).
		Str("verification_id", verificationID).
		Msg("Published face-verified event")
	return nil
}
