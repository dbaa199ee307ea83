package workflow

import (
	"context"
	"errors"

	apperrors "github.com/pratik-mahalle/wardroberec/internal/pkg/errors"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/logger"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/metrics"
	"github.com/pratik-mahalle/wardroberec/internal/session"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// ErrSubmissionInFlight is returned by Submit while an earlier submit is running
var ErrSubmissionInFlight = apperrors.Busy("rating submission")

// RatingFlow rates the current recommendation. Only one submission runs at
// a time; extra submits are dropped, not queued.
type RatingFlow struct {
	store     *session.Store
	submitter RatingSubmitter
	log       *logger.Logger

	// UserID is sent with each rating when set
	UserID string
}

// NewRatingFlow creates a rating flow bound to a session
func NewRatingFlow(store *session.Store, submitter RatingSubmitter, log *logger.Logger) *RatingFlow {
	return &RatingFlow{
		store:     store,
		submitter: submitter,
		log:       orNop(log).ForFlow(flowRating),
	}
}

// SelectStars picks a star rating and returns the clamped value
func (f *RatingFlow) SelectStars(n int) int {
	return f.store.SetStars(n)
}

// Dismiss hides the rating prompt without submitting
func (f *RatingFlow) Dismiss() {
	f.store.SetRatingVisible(false)
}

// Submit sends the selected rating for the current outfit
func (f *RatingFlow) Submit(ctx context.Context) error {
	st, err := f.store.TryBeginRating()
	switch {
	case errors.Is(err, session.ErrRatingInFlight):
		metrics.RecordWorkflowEvent(flowRating, "duplicate_dropped")
		f.log.Debugf("rating submit ignored, one already in flight")
		return ErrSubmissionInFlight
	case errors.Is(err, session.ErrRatingClosed):
		return apperrors.InvalidState("rate an outfit", "rating closed")
	case err != nil:
		return apperrors.InvalidState("rate an outfit", string(st.RecommendationStatus))
	}

	req := client.NewRatingRequest(st.Recommendation, st.RatingStars)
	req.UserID = f.UserID

	if err := f.submitter.Submit(ctx, req); err != nil {
		appErr := fail(f.log, flowRating, "submit", err)
		f.store.EndRating(appErr)
		return appErr
	}

	f.store.EndRating(nil)
	metrics.RecordWorkflowEvent(flowRating, "submitted")
	f.log.With("outfit_id", req.OutfitID).Infof("rated outfit %d stars", req.Rating)
	return nil
}
