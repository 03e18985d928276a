package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"faceverify/internal/core/domain"
	"faceverify/internal/core/ports"
)

const testSecret = "test-secret"

// --- Mocks ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepository) ApplyUpdate(ctx context.Context, id string, upd domain.UserUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

type MockDenylistRepository struct {
	mock.Mock
}

func (m *MockDenylistRepository) Insert(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
func (m *MockDenylistRepository) Contains(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

type MockVerificationRepository struct {
	mock.Mock
}

func (m *MockVerificationRepository) Create(ctx context.Context, v *domain.Verification) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}
func (m *MockVerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Verification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Verification), args.Error(1)
}
func (m *MockVerificationRepository) FindActiveByUser(ctx context.Context, userID string) (*domain.Verification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Verification), args.Error(1)
}
func (m *MockVerificationRepository) CompleteFromStarted(ctx context.Context, id uuid.UUID, status domain.VerificationStatus, rawResponse, failedReason string) (bool, error) {
	args := m.Called(ctx, id, status, rawResponse, failedReason)
	return args.Bool(0), args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, userID string, verificationID uuid.UUID, kind ports.ImageKind, data []byte) (domain.ImageLocator, error) {
	args := m.Called(ctx, userID, verificationID, kind, data)
	return args.Get(0).(domain.ImageLocator), args.Error(1)
}
func (m *MockImageStore) Download(ctx context.Context, obj domain.S3Object) ([]byte, error) {
	args := m.Called(ctx, obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockQueueClient struct {
	mock.Mock
}

func (m *MockQueueClient) Receive(ctx context.Context) ([]ports.QueueMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.QueueMessage), args.Error(1)
}
func (m *MockQueueClient) DeleteBatch(ctx context.Context, msgs []ports.QueueMessage) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}
func (m *MockQueueClient) Send(ctx context.Context, body []byte) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}

// --- Helpers ---

type serverFixture struct {
	handler       http.Handler
	users         *MockUserRepository
	denylist      *MockDenylistRepository
	verifications *MockVerificationRepository
	images        *MockImageStore
	queue         *MockQueueClient
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	f := &serverFixture{
		users:         new(MockUserRepository),
		denylist:      new(MockDenylistRepository),
		verifications: new(MockVerificationRepository),
		images:        new(MockImageStore),
		queue:         new(MockQueueClient),
	}
	nopLogger := zerolog.Nop()
	srv := NewServer(f.users, f.denylist, f.verifications, f.images, f.queue, testSecret, &nopLogger)
	f.handler = srv.Handler()
	return f
}

func signToken(t *testing.T, subject, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func eligibleUser(id string) *domain.User {
	return &domain.User{ID: id, SignedUp: true}
}

// multipartBody builds a two-file upload request body.
func multipartBody(t *testing.T, selfieName, photoIDName string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	selfie, err := w.CreateFormFile("selfie", selfieName)
	require.NoError(t, err)
	_, err = selfie.Write([]byte("selfie-bytes"))
	require.NoError(t, err)

	photoID, err := w.CreateFormFile("photoId", photoIDName)
	require.NoError(t, err)
	_, err = photoID.Write([]byte("photo-id-bytes"))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func doUpload(f *serverFixture, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/user", body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestServer_MissingTokenIsUnauthorized(t *testing.T) {
	f := newServerFixture(t)

	rec := doUpload(f, "", &bytes.Buffer{}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestServer_TokenSignedWithWrongKeyIsUnauthorized(t *testing.T) {
	f := newServerFixture(t)

	token := signToken(t, "user-1", "wrong-secret")
	rec := doUpload(f, token, &bytes.Buffer{}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_RevokedTokenIsUnauthorized(t *testing.T) {
	f := newServerFixture(t)

	token := signToken(t, "user-1", testSecret)
	f.denylist.On("Contains", mock.Anything, token).Return(true, nil)

	rec := doUpload(f, token, &bytes.Buffer{}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.denylist.AssertExpectations(t)
}

func TestServer_BlockedUserIsForbidden(t *testing.T) {
	f := newServerFixture(t)

	token := signToken(t, "user-1", testSecret)
	f.denylist.On("Contains", mock.Anything, token).Return(false, nil)
	f.users.On("GetByID", mock.Anything, "user-1").
		Return(&domain.User{ID: "user-1", SignedUp: true, IsBlocked: true}, nil)

	rec := doUpload(f, token, &bytes.Buffer{}, "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_NotSignedUpIsForbidden(t *testing.T) {
	f := newServerFixture(t)

	token := signToken(t, "user-1", testSecret)
	f.denylist.On("Contains", mock.Anything, token).Return(false, nil)
	f.users.On("GetByID", mock.Anything, "user-1").
		Return(&domain.User{ID: "user-1", SignedUp: false}, nil)

	rec := doUpload(f, token, &bytes.Buffer{}, "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_AlreadyVerifiedIsConflict(t *testing.T) {
	f := newServerFixture(t)

	token := signToken(t, "user-1", testSecret)
	f.denylist.On("Contains", mock.Anything, token).Return(false, nil)
	f.users.On("GetByID", mock.Anything, "user-1").
		Return(&domain.User{ID: "user-1", SignedUp: true, FaceIDVerified: true}, nil)

	rec := doUpload(f, token, &bytes.Buffer{}, "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_ActiveVerificationIsConflict(t *testing.T) {
	f := newServerFixture(t)

	token := signToken(t, "user-1", testSecret)
	f.denylist.On("Contains", mock.Anything, token).Return(false, nil)
	f.users.On("GetByID", mock.Anything, "user-1").Return(eligibleUser("user-1"), nil)
	f.verifications.On("FindActiveByUser", mock.Anything, "user-1").
		Return(&domain.Verification{ID: uuid.New(), UserID: "user-1", Status: domain.StatusStarted}, nil)

	rec := doUpload(f, token, &bytes.Buffer{}, "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestServer_NonJPEGUploadRejected(t *testing.T) {
	f := newServerFixture(t)

	token := signToken(t, "user-1", testSecret)
	f.denylist.On("Contains", mock.Anything, token).Return(false, nil)
	f.users.On("GetByID", mock.Anything, "user-1").Return(eligibleUser("user-1"), nil)
	f.verifications.On("FindActiveByUser", mock.Anything, "user-1").Return(nil, nil)

	body, contentType := multipartBody(t, "selfie.png", "photo.jpg")
	rec := doUpload(f, token, body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestServer_StartVerificationHappyPath(t *testing.T) {
	f := newServerFixture(t)

	token := signToken(t, "user-1", testSecret)
	f.denylist.On("Contains", mock.Anything, token).Return(false, nil)
	f.users.On("GetByID", mock.Anything, "user-1").Return(eligibleUser("user-1"), nil)
	f.verifications.On("FindActiveByUser", mock.Anything, "user-1").Return(nil, nil)

	f.images.On("Upload", mock.Anything, "user-1", mock.Anything, ports.ImageSelfie, []byte("selfie-bytes")).
		Return(domain.ImageLocator{S3URI: "s3://b/selfie.jpg"}, nil)
	f.images.On("Upload", mock.Anything, "user-1", mock.Anything, ports.ImagePhotoID, []byte("photo-id-bytes")).
		Return(domain.ImageLocator{S3URI: "s3://b/photoId.jpg"}, nil)

	f.verifications.On("Create", mock.Anything, mock.MatchedBy(func(v *domain.Verification) bool {
		return v.UserID == "user-1" && v.Status == domain.StatusStarted &&
			v.Selfie.S3URI == "s3://b/selfie.jpg" && v.PhotoID.S3URI == "s3://b/photoId.jpg"
	})).Return(nil)

	f.queue.On("Send", mock.Anything, mock.MatchedBy(func(body []byte) bool {
		var msg domain.VerifyUserMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return false
		}
		return msg.EventType == domain.EventVerifyUser && msg.VerificationID != ""
	})).Return(nil)

	body, contentType := multipartBody(t, "selfie.jpg", "photo.jpeg")
	rec := doUpload(f, token, body, contentType)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Verification Started", resp["message"])
	assert.Equal(t, "Started", resp["status"])

	f.images.AssertExpectations(t)
	f.verifications.AssertExpectations(t)
	f.queue.AssertExpectations(t)
}
