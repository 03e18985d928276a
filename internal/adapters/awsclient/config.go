// Package awsclient loads the AWS SDK configuration shared by every
// AWS-backed adapter in the process.
package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
)

// Load builds an aws.Config for the given region, honoring an optional
// custom endpoint (e.g. http://localstack:4566). Credentials come from the
// default chain (env, shared config, instance role); the resulting config
// is owned by main and injected into each client, never read from globals.
func Load(ctx context.Context, region, endpoint string) (aws.Config, error) {
	if endpoint == "" {
		return awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region))
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, r string, _ ...any) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               endpoint,
			HostnameImmutable: true,
			PartitionID:       "aws",
		}, nil
	})
	return awsCfg.LoadDefaultConfig(ctx,
		awsCfg.WithRegion(region),
		awsCfg.WithEndpointResolverWithOptions(resolver),
	)
}
