package domain

// EventKind is the closed enum of event types crossing the queue.
// Unrecognized kinds arriving from a newer/older producer are logged and
// skipped by the router; everything else is dispatched exhaustively.
type EventKind string

const (
	EventUserCreatedByPhone EventKind = "AUTH_USER_CREATED_BY_PHONE"
	EventUserUpdated        EventKind = "AUTH_USER_UPDATED"
	EventTokenBlacklist     EventKind = "AUTH_TOKEN_BLACKLIST"
	EventVerifyUser         EventKind = "VERIFY_USER"

	// EventUserFaceVerified is outbound only.
	EventUserFaceVerified EventKind = "VERIFY_USER_FACE_VERIFIED"
)

// UserEventPayload is the user object carried by relayed auth events.
// Field names follow the producer's wire format.
type UserEventPayload struct {
	ID             string  `json:"_id"`
	PhoneNumber    *string `json:"phoneNumber"`
	Email          *string `json:"email"`
	SignedUp       *bool   `json:"signedUp"`
	IsBlocked      *bool   `json:"isBlocked"`
	FaceIDVerified *bool   `json:"faceIdVerified"`
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Online         *bool   `json:"online"`
}

// InboundEvent is the decoded, tagged form of a queue message. Exactly the
// payload fields for the given Kind are populated.
type InboundEvent struct {
	Kind EventKind

	// AUTH_USER_CREATED_BY_PHONE / AUTH_USER_UPDATED
	UserID string
	User   *UserEventPayload

	// AUTH_TOKEN_BLACKLIST
	Token string

	// VERIFY_USER
	VerificationID string
}

// VerifyUserMessage is the self-originated payload the service enqueues to
// schedule its own continuation step.
type VerifyUserMessage struct {
	VerificationID string    `json:"verificationId"`
	EventType      EventKind `json:"EVENT_TYPE"`
}

// FaceVerifiedEvent is the outbound notification published when a
// verification reaches Verified.
type FaceVerifiedEvent struct {
	UserID         string    `json:"userId"`
	VerificationID string    `json:"verificationId"`
	EventType      EventKind `json:"EVENT_TYPE"`
}
