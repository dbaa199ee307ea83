// Package workflow drives the capture, recommendation, rating and wardrobe
// screens on top of the backend client. Each flow issues at most one call per
// user action and never retries on its own.
package workflow

import (
	"context"

	"github.com/getsentry/sentry-go"

	apperrors "github.com/pratik-mahalle/wardroberec/internal/pkg/errors"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/logger"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/metrics"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// Flow names used for logging and metrics
const (
	flowCapture        = "capture"
	flowRecommendation = "recommendation"
	flowRating         = "rating"
	flowWardrobe       = "wardrobe"
)

// Uploader sends a captured photo with its metadata
type Uploader interface {
	Upload(ctx context.Context, req client.UploadRequest) (*client.UploadConfirmation, error)
}

// Recommender fetches an outfit for a set of preferences
type Recommender interface {
	Get(ctx context.Context, req client.RecommendationRequest) (*client.RecommendationResponse, error)
}

// RatingSubmitter sends an outfit rating
type RatingSubmitter interface {
	Submit(ctx context.Context, req client.RatingRequest) error
}

// Wardrobe lists and deletes stored clothing
type Wardrobe interface {
	List(ctx context.Context, filter *client.WardrobeFilter) ([]client.ClothingItem, error)
	Delete(ctx context.Context, id int) (bool, error)
}

var (
	_ Uploader        = (*client.ClothesService)(nil)
	_ Wardrobe        = (*client.ClothesService)(nil)
	_ Recommender     = (*client.RecommendationService)(nil)
	_ RatingSubmitter = (*client.RatingService)(nil)
)

// fail converts a failed call into a user-facing error after logging it,
// counting it and reporting it to Sentry
func fail(log *logger.Logger, flow, action string, err error) *apperrors.AppError {
	appErr := apperrors.FromClient(err)

	metrics.RecordWorkflowEvent(flow, action+"_failed")
	log.WithError(err).With("code", appErr.Code).Warnf("%s failed", action)

	// validation problems are the user's to fix, not incidents
	if appErr.Code != apperrors.ErrCodeValidation {
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("flow", flow)
			scope.SetTag("failure_kind", string(client.KindOf(err)))
			scope.SetExtra("action", action)
			sentry.CaptureException(err)
		})
	}
	return appErr
}

func orNop(log *logger.Logger) *logger.Logger {
	if log == nil {
		return logger.Nop()
	}
	return log
}
