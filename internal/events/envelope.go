package events

import (
	"encoding/json"
	"fmt"

	"faceverify/internal/core/domain"
)

// snsEnvelope is the outer shape of a notification relayed through an
// SNS subscription. Only the nested Message matters; the remaining
// transport fields (TopicArn, Signature, ...) are ignored.
type snsEnvelope struct {
	Message string `json:"Message"`
}

// rawPayload is the superset of fields any inbound event can carry,
// in the producers' wire format.
type rawPayload struct {
	EventType      domain.EventKind         `json:"EVENT_TYPE"`
	User           *domain.UserEventPayload `json:"user"`
	UpdatedUser    *domain.UserEventPayload `json:"updatedUser"`
	UserID         string                   `json:"userId"`
	Token          string                   `json:"token"`
	VerificationID string                   `json:"verificationId"`
}

// decodeEnvelope turns a queue message body into a tagged InboundEvent.
// Two shapes exist: a relayed notification with a nested, separately
// encoded payload, and the flat self-originated message. An event with
// no EVENT_TYPE decodes to Kind == "" and is the router's to skip.
func decodeEnvelope(body string) (domain.InboundEvent, error) {
	var outer snsEnvelope
	if err := json.Unmarshal([]byte(body), &outer); err != nil {
		return domain.InboundEvent{}, fmt.Errorf("parse message body: %w", err)
	}

	payloadJSON := body
	if outer.Message != "" {
		payloadJSON = outer.Message
	}

	var payload rawPayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return domain.InboundEvent{}, fmt.Errorf("parse event payload: %w", err)
	}

	evt := domain.InboundEvent{
		Kind:           payload.EventType,
		UserID:         payload.UserID,
		Token:          payload.Token,
		VerificationID: payload.VerificationID,
	}
	switch {
	case payload.User != nil:
		evt.User = payload.User
	case payload.UpdatedUser != nil:
		evt.User = payload.UpdatedUser
	}
	return evt, nil
}
