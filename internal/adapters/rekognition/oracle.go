// Package rekognition implements the classification oracle on top of
// AWS Rekognition.
package rekognition

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/rs/zerolog"

	"faceverify/internal/core/domain"
	"faceverify/internal/core/ports"
)

// API is the subset of the Rekognition API the oracle uses.
type API interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
	CompareFaces(ctx context.Context, params *rekognition.CompareFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.CompareFacesOutput, error)
}

const maxLabels = 10

type oracle struct {
	// CompareFaces runs in the home region; DetectLabels needs a separate
	// client because the feature is not available in every region.
	compareClient API
	labelsClient  API

	similarityThreshold float32
	log                 zerolog.Logger
}

var _ ports.ClassificationOracle = (*oracle)(nil) // Ensure compliance

// NewOracle creates the Rekognition-backed classification oracle.
func NewOracle(compareClient, labelsClient API, similarityThreshold float32, baseLogger *zerolog.Logger) ports.ClassificationOracle {
	return &oracle{
		compareClient:       compareClient,
		labelsClient:        labelsClient,
		similarityThreshold: similarityThreshold,
		log:                 baseLogger.With().Str("component", "rekognition").Logger(),
	}
}

// DetectLabels classifies image bytes into ranked semantic labels.
func (o *oracle) DetectLabels(ctx context.Context, image []byte) ([]domain.Label, error) {
	out, err := o.labelsClient.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:     &types.Image{Bytes: image},
		MaxLabels: aws.Int32(maxLabels),
		Features:  []types.DetectLabelsFeatureName{types.DetectLabelsFeatureNameGeneralLabels},
	})
	if err != nil {
		o.log.Error().Err(err).Msg("DetectLabels failed")
		return nil, fmt.Errorf("detect labels: %w", err)
	}

	labels := make([]domain.Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		categories := make([]string, 0, len(l.Categories))
		for _, c := range l.Categories {
			categories = append(categories, aws.ToString(c.Name))
		}
		labels = append(labels, domain.Label{
			Name:       aws.ToString(l.Name),
			Categories: categories,
			Confidence: float64(aws.ToFloat32(l.Confidence)),
		})
	}
	return labels, nil
}

// CompareFaces compares the face in the source object against faces in
// the target object, with automatic quality filtering.
func (o *oracle) CompareFaces(ctx context.Context, source, target domain.S3Object) (ports.FaceComparison, error) {
	out, err := o.compareClient.CompareFaces(ctx, &rekognition.CompareFacesInput{
		SourceImage: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(source.Bucket),
				Name:   aws.String(source.Key),
			},
		},
		TargetImage: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(target.Bucket),
				Name:   aws.String(target.Key),
			},
		},
		SimilarityThreshold: aws.Float32(o.similarityThreshold),
		QualityFilter:       types.QualityFilterAuto,
	})
	if err != nil {
		o.log.Error().Err(err).Msg("CompareFaces failed")
		return ports.FaceComparison{}, fmt.Errorf("compare faces: %w", err)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return ports.FaceComparison{}, fmt.Errorf("serialize compare response: %w", err)
	}

	return ports.FaceComparison{
		MatchCount:     len(out.FaceMatches),
		UnmatchedCount: len(out.UnmatchedFaces),
		Raw:            string(raw),
	}, nil
}
