package workflow

import (
	"context"
	"sync"

	"github.com/pratik-mahalle/wardroberec/internal/capture"
	apperrors "github.com/pratik-mahalle/wardroberec/internal/pkg/errors"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/logger"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/metrics"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/validator"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// CaptureState is a step of the capture and upload screen
type CaptureState string

const (
	CaptureIdle            CaptureState = "idle"
	CaptureCaptured        CaptureState = "captured"
	CaptureMetadataEntry   CaptureState = "metadata_entry"
	CaptureUploading       CaptureState = "uploading"
	CaptureUploadSucceeded CaptureState = "upload_succeeded"
	CaptureUploadFailed    CaptureState = "upload_failed"
)

// Metadata describes a captured garment. Every field is required before upload.
type Metadata struct {
	Category string `json:"category" validate:"notblank"`
	Color    string `json:"color" validate:"notblank"`
	Material string `json:"material" validate:"notblank"`
	Occasion string `json:"occasion" validate:"notblank"`
}

// CaptureSession walks one garment from photo to upload:
// Idle, Captured, MetadataEntry, Uploading, then UploadSucceeded or
// UploadFailed. A failed upload falls back to MetadataEntry with the photo
// kept for another attempt.
type CaptureSession struct {
	camera   capture.Camera
	uploader Uploader
	log      *logger.Logger

	// OnTransition, when set, is called after every state change
	OnTransition func(from, to CaptureState)

	mu           sync.Mutex
	state        CaptureState
	photo        capture.Photo
	meta         Metadata
	lastErr      error
	confirmation *client.UploadConfirmation
}

// NewCaptureSession creates an idle capture session
func NewCaptureSession(camera capture.Camera, uploader Uploader, log *logger.Logger) *CaptureSession {
	return &CaptureSession{
		camera:   camera,
		uploader: uploader,
		log:      orNop(log).ForFlow(flowCapture),
		state:    CaptureIdle,
	}
}

// State returns the current step
func (s *CaptureSession) State() CaptureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Photo returns the photo held by the session, if any
func (s *CaptureSession) Photo() capture.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photo
}

// Metadata returns the metadata entered so far
func (s *CaptureSession) Metadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// LastError returns the reason the last upload failed, cleared by the next attempt
func (s *CaptureSession) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Confirmation returns the server's answer to a successful upload
func (s *CaptureSession) Confirmation() *client.UploadConfirmation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmation
}

// transitionLocked must be called with mu held
func (s *CaptureSession) transitionLocked(to CaptureState) {
	from := s.state
	s.state = to
	metrics.RecordWorkflowEvent(flowCapture, string(to))
	s.log.Debugf("capture %s -> %s", from, to)
	if s.OnTransition != nil {
		s.OnTransition(from, to)
	}
}

// Capture takes a photo and moves straight on to metadata entry
func (s *CaptureSession) Capture(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != CaptureIdle {
		return apperrors.InvalidState("capture", string(s.state))
	}

	photo, err := s.camera.Capture(ctx)
	if err != nil {
		s.log.WithError(err).Warnf("capture failed")
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Could not capture a photo")
	}

	s.photo = photo
	s.lastErr = nil
	s.confirmation = nil
	s.transitionLocked(CaptureCaptured)
	s.transitionLocked(CaptureMetadataEntry)
	return nil
}

// SetMetadata records the garment details. Values are stored as entered and
// checked when Upload is called.
func (s *CaptureSession) SetMetadata(m Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != CaptureMetadataEntry {
		return apperrors.InvalidState("edit details", string(s.state))
	}
	s.meta = m
	return nil
}

// Upload sends the photo and metadata. On failure the session returns to
// MetadataEntry with the photo retained and LastError set.
func (s *CaptureSession) Upload(ctx context.Context) (*client.UploadConfirmation, error) {
	s.mu.Lock()
	if s.state != CaptureMetadataEntry {
		state := s.state
		s.mu.Unlock()
		return nil, apperrors.InvalidState("upload", string(state))
	}
	if err := validator.Check(s.meta); err != nil {
		s.mu.Unlock()
		return nil, apperrors.FromClient(err)
	}

	req := client.UploadRequest{
		ImagePath: s.photo.Path,
		Category:  s.meta.Category,
		Color:     s.meta.Color,
		Material:  s.meta.Material,
		Occasion:  s.meta.Occasion,
	}
	s.lastErr = nil
	s.transitionLocked(CaptureUploading)
	s.mu.Unlock()

	conf, err := s.uploader.Upload(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		appErr := fail(s.log, flowCapture, "upload", err)
		s.lastErr = appErr
		s.transitionLocked(CaptureUploadFailed)
		s.transitionLocked(CaptureMetadataEntry)
		return nil, appErr
	}

	s.confirmation = conf
	s.transitionLocked(CaptureUploadSucceeded)
	s.log.With("id", conf.ID).Infof("uploaded %s", req.Category)
	if err := s.photo.Discard(); err != nil {
		s.log.WithError(err).Warnf("could not remove uploaded photo")
	}
	return conf, nil
}

// Retake drops the current photo and returns to Idle
func (s *CaptureSession) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != CaptureMetadataEntry {
		return apperrors.InvalidState("retake", string(s.state))
	}
	s.discardLocked()
	s.transitionLocked(CaptureIdle)
	return nil
}

// Reset abandons the session from any step except an upload in flight
func (s *CaptureSession) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == CaptureUploading {
		return apperrors.InvalidState("reset", string(s.state))
	}
	if s.state == CaptureIdle {
		return nil
	}
	s.discardLocked()
	s.meta = Metadata{}
	s.lastErr = nil
	s.transitionLocked(CaptureIdle)
	return nil
}

func (s *CaptureSession) discardLocked() {
	if err := s.photo.Discard(); err != nil {
		s.log.WithError(err).Warnf("could not remove photo")
	}
	s.photo = capture.Photo{}
}
