package ports

import (
	"context"

	"faceverify/internal/core/domain"
)

// FaceComparison summarizes the oracle's face-similarity judgment.
// Raw keeps the full serialized response for audit.
type FaceComparison struct {
	MatchCount     int
	UnmatchedCount int
	Raw            string
}

// ClassificationOracle is the external image-classification service.
// Classification accuracy is the oracle's problem, not ours; we only
// interpret its labeled output.
type ClassificationOracle interface {
	// DetectLabels classifies image bytes into ranked semantic labels.
	DetectLabels(ctx context.Context, image []byte) ([]domain.Label, error)

	// CompareFaces compares the face in the source object against faces
	// found in the target object.
	CompareFaces(ctx context.Context, source, target domain.S3Object) (FaceComparison, error)
}
