package workflow

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pratik-mahalle/wardroberec/internal/pkg/errors"
	"github.com/pratik-mahalle/wardroberec/internal/testutil"
)

var shirt = Metadata{Category: "Top", Color: "Blue", Material: "Cotton", Occasion: "Casual"}

func newCaptureSession(t *testing.T) (*CaptureSession, *testutil.FakeBackend, *testutil.StubCamera, *[]CaptureState) {
	t.Helper()
	backend := testutil.NewFakeBackend(t)
	camera := testutil.NewStubCamera(testutil.WriteJPEG(t, "shirt.jpg"))
	s := NewCaptureSession(camera, backend.Client().Clothes(), nil)

	var visited []CaptureState
	s.OnTransition = func(_, to CaptureState) {
		visited = append(visited, to)
	}
	return s, backend, camera, &visited
}

func TestCaptureUploadSucceeds(t *testing.T) {
	s, backend, _, visited := newCaptureSession(t)
	ctx := context.Background()

	require.Equal(t, CaptureIdle, s.State())
	require.NoError(t, s.Capture(ctx))
	assert.Equal(t, CaptureMetadataEntry, s.State())
	assert.Equal(t, []CaptureState{CaptureCaptured, CaptureMetadataEntry}, *visited)

	require.NoError(t, s.SetMetadata(shirt))
	conf, err := s.Upload(ctx)
	require.NoError(t, err)
	require.NotNil(t, conf)
	assert.Equal(t, 1, conf.ID)
	assert.Equal(t, CaptureUploadSucceeded, s.State())
	assert.Equal(t, conf, s.Confirmation())
	assert.Equal(t, []CaptureState{CaptureCaptured, CaptureMetadataEntry, CaptureUploading, CaptureUploadSucceeded}, *visited)

	uploads := backend.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, map[string]string{
		"category": "Top",
		"color":    "Blue",
		"material": "Cotton",
		"occasion": "Casual",
	}, uploads[0].Fields)
	assert.Equal(t, "image/jpeg", uploads[0].ImageContentType)
	assert.Equal(t, "shirt.jpg", uploads[0].ImageFilename)
	for name, ct := range uploads[0].FieldTypes {
		assert.Contains(t, ct, "text/plain", "field %s", name)
	}

	require.NoError(t, s.Reset())
	assert.Equal(t, CaptureIdle, s.State())
}

func TestCaptureUploadRequiresAllMetadata(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
	}{
		{name: "nothing entered", meta: Metadata{}},
		{name: "missing material", meta: Metadata{Category: "Top", Color: "Blue", Occasion: "Casual"}},
		{name: "blank occasion", meta: Metadata{Category: "Top", Color: "Blue", Material: "Cotton", Occasion: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, backend, _, _ := newCaptureSession(t)
			ctx := context.Background()
			require.NoError(t, s.Capture(ctx))
			require.NoError(t, s.SetMetadata(tt.meta))

			_, err := s.Upload(ctx)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeValidation, apperrors.Code(err))
			assert.Equal(t, CaptureMetadataEntry, s.State())
			assert.Zero(t, backend.Calls(testutil.RouteUpload))
		})
	}
}

func TestCaptureUploadFailureKeepsPhoto(t *testing.T) {
	s, backend, camera, visited := newCaptureSession(t)
	ctx := context.Background()

	require.NoError(t, s.Capture(ctx))
	require.NoError(t, s.SetMetadata(shirt))
	photo := s.Photo()

	backend.Fail(testutil.RouteUpload, http.StatusInternalServerError, `{"error":"disk full"}`)
	_, err := s.Upload(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeServerRejected, apperrors.Code(err))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	assert.Equal(t, `{"error":"disk full"}`, appErr.Details)

	assert.Equal(t, CaptureMetadataEntry, s.State())
	assert.Equal(t, photo, s.Photo())
	assert.Equal(t, err, s.LastError())
	assert.Contains(t, *visited, CaptureUploadFailed)

	// retry without re-capturing
	backend.Recover(testutil.RouteUpload)
	_, err = s.Upload(ctx)
	require.NoError(t, err)
	assert.Nil(t, s.LastError())
	assert.Equal(t, 1, camera.Captures())
	assert.Equal(t, 2, backend.Calls(testutil.RouteUpload))
}

func TestCaptureUploadTransportFailure(t *testing.T) {
	s, backend, _, _ := newCaptureSession(t)
	ctx := context.Background()

	require.NoError(t, s.Capture(ctx))
	require.NoError(t, s.SetMetadata(shirt))
	backend.Close()

	_, err := s.Upload(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.Code(err))
	assert.Equal(t, CaptureMetadataEntry, s.State())
}

func TestCaptureRetake(t *testing.T) {
	s, _, camera, _ := newCaptureSession(t)
	ctx := context.Background()

	err := s.Retake()
	assert.Equal(t, apperrors.ErrCodeInvalidState, apperrors.Code(err))

	require.NoError(t, s.Capture(ctx))
	require.NoError(t, s.Retake())
	assert.Equal(t, CaptureIdle, s.State())
	assert.Empty(t, s.Photo().Path)

	require.NoError(t, s.Capture(ctx))
	assert.Equal(t, 2, camera.Captures())
}

func TestCaptureInvalidTransitions(t *testing.T) {
	s, _, _, _ := newCaptureSession(t)
	ctx := context.Background()

	assert.Equal(t, apperrors.ErrCodeInvalidState, apperrors.Code(s.SetMetadata(shirt)))
	_, err := s.Upload(ctx)
	assert.Equal(t, apperrors.ErrCodeInvalidState, apperrors.Code(err))

	require.NoError(t, s.Capture(ctx))
	assert.Equal(t, apperrors.ErrCodeInvalidState, apperrors.Code(s.Capture(ctx)))
}

func TestCaptureCameraFailureStaysIdle(t *testing.T) {
	s, _, camera, visited := newCaptureSession(t)
	camera.Err = errors.New("camera busy")

	err := s.Capture(context.Background())
	require.Error(t, err)
	assert.Equal(t, CaptureIdle, s.State())
	assert.Empty(t, *visited)
}
