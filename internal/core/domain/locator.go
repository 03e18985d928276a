package domain

import (
	"fmt"
	"strings"
)

// S3Object is a destructured object-store locator.
type S3Object struct {
	Bucket string
	Key    string
}

// ParseS3URI destructures an s3://bucket/key... locator: the bucket is the
// second path segment, the key is the remainder.
// Example: s3://verification-images/65bf.../verification/65bf.../images/selfie.jpg
func ParseS3URI(uri string) (S3Object, error) {
	parts := strings.Split(uri, "/")
	if len(parts) < 4 || parts[0] != "s3:" || parts[1] != "" || parts[2] == "" {
		return S3Object{}, fmt.Errorf("malformed s3 uri: %q", uri)
	}
	key := strings.Join(parts[3:], "/")
	if key == "" {
		return S3Object{}, fmt.Errorf("s3 uri has no object key: %q", uri)
	}
	return S3Object{Bucket: parts[2], Key: key}, nil
}
