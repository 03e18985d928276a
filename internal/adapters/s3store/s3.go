// Package s3store implements the image store on top of S3.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"faceverify/internal/core/domain"
	"faceverify/internal/core/ports"
)

// Client is the subset of the S3 API the store uses.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type imageStore struct {
	client Client
	bucket string
	region string
	log    zerolog.Logger
}

var _ ports.ImageStore = (*imageStore)(nil) // Ensure compliance

// NewImageStore creates the S3-backed image store.
func NewImageStore(client Client, bucket, region string, baseLogger *zerolog.Logger) ports.ImageStore {
	return &imageStore{
		client: client,
		bucket: bucket,
		region: region,
		log:    baseLogger.With().Str("component", "s3_store").Logger(),
	}
}

// objectKey builds the key a verification image is stored under.
func objectKey(userID string, verificationID uuid.UUID, kind ports.ImageKind) string {
	return fmt.Sprintf("%s/verification/%s/images/%s.jpg", userID, verificationID, kind)
}

// Upload stores the image and returns its locator pair: the internal
// s3:// URI the engine later destructures, and the public object URL.
func (s *imageStore) Upload(ctx context.Context, userID string, verificationID uuid.UUID, kind ports.ImageKind, data []byte) (domain.ImageLocator, error) {
	key := objectKey(userID, verificationID, kind)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to upload image")
		return domain.ImageLocator{}, fmt.Errorf("upload %s: %w", kind, err)
	}

	return domain.ImageLocator{
		S3URI:     fmt.Sprintf("s3://%s/%s", s.bucket, key),
		ObjectURL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
	}, nil
}

// Download fetches the image bytes for a destructured locator.
func (s *imageStore) Download(ctx context.Context, obj domain.S3Object) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		s.log.Error().Err(err).Str("bucket", obj.Bucket).Str("key", obj.Key).Msg("Failed to download image")
		return nil, fmt.Errorf("download s3://%s/%s: %w", obj.Bucket, obj.Key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s body: %w", obj.Bucket, obj.Key, err)
	}
	return data, nil
}
