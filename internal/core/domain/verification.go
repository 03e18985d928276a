package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the finite state of a verification record.
// The only legal transitions are Started -> {Verified, NotVerified, Failed};
// the three non-Started states are terminal.
type VerificationStatus string

const (
	StatusStarted     VerificationStatus = "Started"
	StatusVerified    VerificationStatus = "Verified"
	StatusNotVerified VerificationStatus = "Not Verified" // faces did not match
	StatusFailed      VerificationStatus = "Failed"       // any failure, incl. server errors
)

// Terminal reports whether no further transition is legal from s.
func (s VerificationStatus) Terminal() bool {
	return s == StatusVerified || s == StatusNotVerified || s == StatusFailed
}

// ImageLocator is the pair of references the image store returns on upload.
type ImageLocator struct {
	S3URI     string // internal s3://bucket/key reference
	ObjectURL string // public https URL
}

// Verification is the central entity of the service. The ID is generated
// by the caller (not the store) so it can be referenced before the record
// exists. Records are never deleted; failed attempts stay for audit.
type Verification struct {
	ID                 uuid.UUID
	UserID             string
	Selfie             ImageLocator
	PhotoID            ImageLocator
	Status             VerificationStatus
	RawCompareResponse string // opaque serialized oracle output, kept for audit
	FailedReason       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
