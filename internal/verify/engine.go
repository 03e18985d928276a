// Package verify owns the verification state machine: it drives a record
// from Started to one of the terminal states.
package verify

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"faceverify/internal/core/domain"
	"faceverify/internal/core/ports"
	"faceverify/internal/shared/metrics"
)

// Failure reasons persisted on the verification record.
const (
	reasonNotPhotoID  = "not a valid photoId"
	reasonNotSelfie   = "not a valid selfie"
	reasonNotMatching = "selfie and PhotoId not Matching"
	reasonCompareOdd  = "server error" // compare response had neither matches nor unmatched faces
	reasonServerError = "Server Error"
)

// Engine orchestrates one continuation step:
// load -> download -> classify -> compare -> decide -> persist -> notify.
type Engine struct {
	verifications ports.VerificationRepository
	images        ports.ImageStore
	oracle        ports.ClassificationOracle
	notifier      ports.NotificationPublisher
	classifier    domain.Classifier

	// notifyFailClosed propagates a failed face-verified publish as an
	// error so the queue message redelivers and the publish retries.
	// The default (fail-open) logs and continues.
	notifyFailClosed bool

	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewEngine creates the verification engine.
func NewEngine(
	verifications ports.VerificationRepository,
	images ports.ImageStore,
	oracle ports.ClassificationOracle,
	notifier ports.NotificationPublisher,
	classifier domain.Classifier,
	notifyFailClosed bool,
	m *metrics.Metrics,
	baseLogger *zerolog.Logger,
) *Engine {
	return &Engine{
		verifications:    verifications,
		images:           images,
		oracle:           oracle,
		notifier:         notifier,
		classifier:       classifier,
		notifyFailClosed: notifyFailClosed,
		metrics:          m,
		log:              baseLogger.With().Str("component", "verify_engine").Logger(),
	}
}

// Continue drives the verification with the given ID to a terminal
// state. Soft failures (unknown ID, record missing, record already
// terminal) return nil: redelivery would only repeat the same no-op.
// Anything that breaks mid-pipeline force-fails the record so the user
// can request a new verification, then returns the error to the router.
func (e *Engine) Continue(ctx context.Context, verificationID string) error {
	log := e.log.With().Str("verification_id", verificationID).Logger()

	id, err := uuid.Parse(verificationID)
	if err != nil {
		log.Warn().Err(err).Msg("Malformed verification id, skipping")
		return nil
	}

	v, err := e.verifications.GetByID(ctx, id)
	if err != nil {
		// The load itself is part of the pipeline: a transient read
		// failure still force-fails the record so the user can start
		// over instead of being stuck behind a Started record forever.
		e.forceFail(ctx, id, log)
		return fmt.Errorf("load verification: %w", err)
	}
	if v == nil {
		log.Warn().Msg("Verification details not found")
		return nil
	}

	if v.Status.Terminal() {
		if v.Status == domain.StatusVerified && e.notifyFailClosed {
			// Only reachable when a previous publish failed and the
			// message redelivered: retry the notification, nothing else.
			return e.notify(ctx, v)
		}
		log.Info().Str("status", string(v.Status)).Msg("Verification already terminal, skipping")
		return nil
	}

	status, updated, err := e.resolve(ctx, v)
	if err != nil {
		e.forceFail(ctx, v.ID, log)
		return err
	}

	if status == domain.StatusVerified && updated {
		return e.notify(ctx, v)
	}
	return nil
}

// forceFail best-effort transitions the record to Failed with the
// generic server-error reason. The conditional update keeps a record
// that already reached a terminal state untouched.
func (e *Engine) forceFail(ctx context.Context, id uuid.UUID, log zerolog.Logger) {
	updated, err := e.verifications.CompleteFromStarted(ctx, id, domain.StatusFailed, "", reasonServerError)
	if err != nil {
		log.Error().Err(err).Msg("Failed to force-fail verification")
		return
	}
	if updated {
		e.metrics.VerificationOutcomes.WithLabelValues(string(domain.StatusFailed)).Inc()
	}
}

// resolve runs the decision pipeline and persists the terminal status.
// The returned bool reports whether this call actually transitioned the
// record; a lost concurrency race yields false and the outcome (and any
// notification) belongs to the winner.
func (e *Engine) resolve(ctx context.Context, v *domain.Verification) (domain.VerificationStatus, bool, error) {
	photoIDObj, err := domain.ParseS3URI(v.PhotoID.S3URI)
	if err != nil {
		return "", false, err
	}
	selfieObj, err := domain.ParseS3URI(v.Selfie.S3URI)
	if err != nil {
		return "", false, err
	}

	photoIDImg, selfieImg, err := e.downloadBoth(ctx, photoIDObj, selfieObj)
	if err != nil {
		return "", false, err
	}

	photoIDLabels, err := e.oracle.DetectLabels(ctx, photoIDImg)
	if err != nil {
		return "", false, err
	}
	selfieLabels, err := e.oracle.DetectLabels(ctx, selfieImg)
	if err != nil {
		return "", false, err
	}

	isPhotoID := e.classifier.IsPhotoID(photoIDLabels)
	isSelfie := e.classifier.IsSelfie(selfieLabels)

	if !isPhotoID || !isSelfie {
		// Tie-break rule: the photo-ID reason wins when both images fail.
		reason := reasonNotSelfie
		if !isPhotoID {
			reason = reasonNotPhotoID
		}
		updated, err := e.complete(ctx, v, domain.StatusFailed, "", reason)
		return domain.StatusFailed, updated, err
	}

	// Source = photo-ID, target = selfie.
	cmp, err := e.oracle.CompareFaces(ctx, photoIDObj, selfieObj)
	if err != nil {
		return "", false, err
	}

	var status domain.VerificationStatus
	var reason string
	switch {
	case cmp.MatchCount > 0:
		status = domain.StatusVerified
	case cmp.UnmatchedCount > 0:
		status, reason = domain.StatusNotVerified, reasonNotMatching
	default:
		status, reason = domain.StatusFailed, reasonCompareOdd
	}

	updated, err := e.complete(ctx, v, status, cmp.Raw, reason)
	return status, updated, err
}

// complete writes the terminal status through the store's conditional
// update, which refuses to transition a record that is no longer Started.
func (e *Engine) complete(ctx context.Context, v *domain.Verification, status domain.VerificationStatus, rawResponse, reason string) (bool, error) {
	updated, err := e.verifications.CompleteFromStarted(ctx, v.ID, status, rawResponse, reason)
	if err != nil {
		return false, fmt.Errorf("persist status %q: %w", status, err)
	}
	if !updated {
		// Lost a race with a concurrent continuation.
		e.log.Warn().
			Str("verification_id", v.ID.String()).
			Str("status", string(status)).
			Msg("Record left Started while processing, outcome discarded")
		return false, nil
	}

	e.metrics.VerificationOutcomes.WithLabelValues(string(status)).Inc()
	e.log.Info().
		Str("verification_id", v.ID.String()).
		Str("status", string(status)).
		Str("failed_reason", reason).
		Msg("User face verification completed")
	return true, nil
}

// notify publishes the face-verified event. Publish failures never roll
// back the status change: fail-open swallows them, fail-closed hands the
// error to the router so the message redelivers.
func (e *Engine) notify(ctx context.Context, v *domain.Verification) error {
	err := e.notifier.PublishFaceVerified(ctx, v.UserID, v.ID.String())
	if err == nil {
		e.metrics.NotificationsPublished.Inc()
		return nil
	}

	e.metrics.NotificationsFailed.Inc()
	if e.notifyFailClosed {
		return fmt.Errorf("publish face-verified: %w", err)
	}
	e.log.Error().Err(err).
		Str("verification_id", v.ID.String()).
		Msg("Face-verified publish failed, continuing (fail-open policy)")
	return nil
}

// downloadBoth fetches both images from the store in parallel.
func (e *Engine) downloadBoth(ctx context.Context, photoIDObj, selfieObj domain.S3Object) (photoID, selfie []byte, err error) {
	var wg sync.WaitGroup
	var photoIDErr, selfieErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		photoID, photoIDErr = e.images.Download(ctx, photoIDObj)
	}()
	go func() {
		defer wg.Done()
		selfie, selfieErr = e.images.Download(ctx, selfieObj)
	}()
	wg.Wait()

	if photoIDErr != nil {
		return nil, nil, photoIDErr
	}
	if selfieErr != nil {
		return nil, nil, selfieErr
	}
	return photoID, selfie, nil
}
