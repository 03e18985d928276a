package httpapi

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"faceverify/internal/core/domain"
	"faceverify/internal/core/ports"
)

// maxUploadBytes caps the whole multipart body.
const maxUploadBytes = 50 << 20

// handleStartVerification accepts the selfie + photo-ID upload, stores
// both images, creates the Started record, and enqueues the
// continuation message. The actual verification happens asynchronously.
func (s *Server) handleStartVerification(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	log := s.log.With().Str("user_id", userID).Logger()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	selfie, err := readImageField(r, "selfie")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	photoID, err := readImageField(r, "photoId")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	verificationID := uuid.New()

	var wg sync.WaitGroup
	var selfieLoc, photoIDLoc domain.ImageLocator
	var selfieErr, photoIDErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		selfieLoc, selfieErr = s.images.Upload(r.Context(), userID, verificationID, ports.ImageSelfie, selfie)
	}()
	go func() {
		defer wg.Done()
		photoIDLoc, photoIDErr = s.images.Upload(r.Context(), userID, verificationID, ports.ImagePhotoID, photoID)
	}()
	wg.Wait()

	if selfieErr != nil || photoIDErr != nil {
		log.Error().AnErr("selfie_err", selfieErr).AnErr("photo_id_err", photoIDErr).
			Msg("Image upload failed")
		s.writeError(w, http.StatusInternalServerError, "Server Error, Please try again")
		return
	}

	record := &domain.Verification{
		ID:      verificationID,
		UserID:  userID,
		Selfie:  selfieLoc,
		PhotoID: photoIDLoc,
		Status:  domain.StatusStarted,
	}
	if err := s.verifications.Create(r.Context(), record); err != nil {
		log.Error().Err(err).Msg("Failed to create verification record")
		s.writeError(w, http.StatusInternalServerError, "Server Error, Please try again")
		return
	}

	body, err := json.Marshal(domain.VerifyUserMessage{
		VerificationID: verificationID.String(),
		EventType:      domain.EventVerifyUser,
	})
	if err == nil {
		err = s.queue.Send(r.Context(), body)
	}
	if err != nil {
		log.Error().Err(err).Str("verification_id", verificationID.String()).
			Msg("Failed to enqueue verification message")
		s.writeError(w, http.StatusInternalServerError, "Server Error, Please try again")
		return
	}

	log.Info().Str("verification_id", verificationID.String()).Msg("Verification started")
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Verification Started",
		"status":  string(domain.StatusStarted),
	})
}

// readImageField reads one jpeg image out of the multipart form.
func readImageField(r *http.Request, field string) ([]byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, &fieldError{field, "is required"}
	}
	defer file.Close()

	if !isJPEG(header) {
		return nil, &fieldError{field, "must be a jpg/jpeg image"}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &fieldError{field, "could not be read"}
	}
	return data, nil
}

func isJPEG(header *multipart.FileHeader) bool {
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

type fieldError struct {
	field, msg string
}

func (e *fieldError) Error() string { return e.field + " " + e.msg }
