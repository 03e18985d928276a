package ports

import (
	"context"

	"github.com/google/uuid"

	"faceverify/internal/core/domain"
)

// ImageKind names the two images of a verification request. It decides
// the object key under which an upload is stored.
type ImageKind string

const (
	ImageSelfie  ImageKind = "selfie"
	ImagePhotoID ImageKind = "photoId"
)

// ImageStore is durable object storage for verification images.
type ImageStore interface {
	// Upload stores the image bytes and returns the locator pair
	// (internal URI + public URL) identifying the stored object.
	Upload(ctx context.Context, userID string, verificationID uuid.UUID, kind ImageKind, data []byte) (domain.ImageLocator, error)

	// Download fetches the image bytes for a destructured locator.
	Download(ctx context.Context, obj domain.S3Object) ([]byte, error)
}
