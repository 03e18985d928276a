// Package events contains the queue consumer and the event router: the
// asynchronous entry points of the verification pipeline.
package events

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"faceverify/internal/core/domain"
	"faceverify/internal/core/ports"
	"faceverify/internal/shared/metrics"
)

// Verifier drives a verification record to a terminal state. Implemented
// by the verification engine.
type Verifier interface {
	Continue(ctx context.Context, verificationID string) error
}

// Router decodes each message of a batch independently, identifies its
// envelope shape and event kind, and dispatches to the matching handler.
// A single malformed or unhandled message never fails the whole batch.
type Router struct {
	users    ports.UserRepository
	denylist ports.TokenDenylistRepository
	verifier Verifier
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewRouter creates the event router.
func NewRouter(
	users ports.UserRepository,
	denylist ports.TokenDenylistRepository,
	verifier Verifier,
	m *metrics.Metrics,
	baseLogger *zerolog.Logger,
) *Router {
	return &Router{
		users:    users,
		denylist: denylist,
		verifier: verifier,
		metrics:  m,
		log:      baseLogger.With().Str("component", "event_router").Logger(),
	}
}

// HandleBatch dispatches every message of the batch concurrently and
// waits for all of them to settle. Handler failures are absorbed at the
// per-message boundary: the consumer deletes the whole batch afterwards
// and failed messages are not redelivered. This trades consistency for
// availability; handlers are idempotent so the occasional lost retry is
// acceptable.
func (r *Router) HandleBatch(ctx context.Context, msgs []ports.QueueMessage) error {
	var wg sync.WaitGroup
	for _, msg := range msgs {
		wg.Add(1)
		go func(msg ports.QueueMessage) {
			defer wg.Done()
			r.handleMessage(ctx, msg)
		}(msg)
	}
	wg.Wait()
	return nil
}

func (r *Router) handleMessage(ctx context.Context, msg ports.QueueMessage) {
	log := r.log.With().Str("message_id", msg.ID).Logger()

	evt, err := decodeEnvelope(msg.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse queue message")
		r.metrics.MessagesFailed.WithLabelValues("malformed").Inc()
		return
	}

	if evt.Kind == "" {
		log.Warn().Msg("Message carries no event type, skipping")
		return
	}

	log = log.With().Str("event_type", string(evt.Kind)).Logger()
	log.Info().Msg("Dispatching event")

	if err := r.dispatch(ctx, evt); err != nil {
		log.Error().Err(err).Msg("Event handler failed")
		r.metrics.MessagesFailed.WithLabelValues(string(evt.Kind)).Inc()
		return
	}
	r.metrics.MessagesHandled.WithLabelValues(string(evt.Kind)).Inc()
}

// dispatch routes a decoded event by kind. The switch covers the full
// closed enum; kinds outside it are forward-compatibility skips.
func (r *Router) dispatch(ctx context.Context, evt domain.InboundEvent) error {
	switch evt.Kind {
	case domain.EventUserCreatedByPhone:
		return r.handleUserCreated(ctx, evt)
	case domain.EventUserUpdated:
		return r.handleUserUpdated(ctx, evt)
	case domain.EventTokenBlacklist:
		return r.handleTokenBlacklisted(ctx, evt)
	case domain.EventVerifyUser:
		return r.verifier.Continue(ctx, evt.VerificationID)
	case domain.EventUserFaceVerified:
		// Our own outbound event looped back through the topic; nothing to do.
		r.log.Debug().Msg("Ignoring looped-back face-verified event")
		return nil
	default:
		// Unrecognized kind from a newer/older producer.
		r.log.Warn().Str("event_type", string(evt.Kind)).Msg("Unhandled event type, skipping")
		return nil
	}
}

// handleUserCreated creates the local user replica, unless it already
// exists (redelivered event).
func (r *Router) handleUserCreated(ctx context.Context, evt domain.InboundEvent) error {
	if evt.User == nil || evt.UserID == "" {
		return errors.New("user-created event missing user payload")
	}

	existing, err := r.users.GetByID(ctx, evt.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		r.log.Info().Str("user_id", evt.UserID).Msg("User already exists, skipping create")
		return nil
	}

	user := userFromPayload(evt.UserID, evt.User)
	return r.users.Create(ctx, user)
}

func (r *Router) handleUserUpdated(ctx context.Context, evt domain.InboundEvent) error {
	if evt.User == nil || evt.UserID == "" {
		return errors.New("user-updated event missing payload")
	}
	return r.users.ApplyUpdate(ctx, evt.UserID, domain.UserUpdate{
		PhoneNumber:    evt.User.PhoneNumber,
		Email:          evt.User.Email,
		SignedUp:       evt.User.SignedUp,
		IsBlocked:      evt.User.IsBlocked,
		FaceIDVerified: evt.User.FaceIDVerified,
		FirstName:      evt.User.FirstName,
		LastName:       evt.User.LastName,
		Online:         evt.User.Online,
	})
}

func (r *Router) handleTokenBlacklisted(ctx context.Context, evt domain.InboundEvent) error {
	if evt.Token == "" {
		return errors.New("token-blacklist event missing token")
	}
	return r.denylist.Insert(ctx, evt.Token)
}

// userFromPayload maps a relayed user object onto the local replica.
func userFromPayload(id string, p *domain.UserEventPayload) *domain.User {
	user := &domain.User{
		ID:          id,
		PhoneNumber: p.PhoneNumber,
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
	}
	if p.SignedUp != nil {
		user.SignedUp = *p.SignedUp
	}
	if p.IsBlocked != nil {
		user.IsBlocked = *p.IsBlocked
	}
	if p.FaceIDVerified != nil {
		user.FaceIDVerified = *p.FaceIDVerified
	}
	if p.Online != nil {
		user.Online = *p.Online
	}
	return user
}
