package workflow

import (
	"context"
	"sync"

	apperrors "github.com/pratik-mahalle/wardroberec/internal/pkg/errors"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/logger"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/metrics"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/validator"
	"github.com/pratik-mahalle/wardroberec/internal/preferences"
	"github.com/pratik-mahalle/wardroberec/internal/session"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// Outcome summarises what the recommendation screen should show
type Outcome string

const (
	OutcomePending Outcome = "pending"
	// OutcomeItems means at least one slot holds an item
	OutcomeItems Outcome = "items"
	// OutcomeNoItems is a successful fetch where every slot came back empty
	OutcomeNoItems Outcome = "no_items"
	// OutcomeFailed means the call itself failed
	OutcomeFailed Outcome = "failed"
)

// OutcomeOf classifies a session snapshot
func OutcomeOf(st session.State) Outcome {
	switch st.RecommendationStatus {
	case session.RecommendationFetched:
		if st.Recommendation.HasItems() {
			return OutcomeItems
		}
		return OutcomeNoItems
	case session.RecommendationFailed:
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

// RecommendationFlow fetches an outfit for the session preferences. The fetch
// runs once per screen entry; re-rendering the screen does not repeat it.
type RecommendationFlow struct {
	store       *session.Store
	recommender Recommender
	log         *logger.Logger

	mu       sync.Mutex
	entered  bool
	fetching bool
}

// NewRecommendationFlow creates a flow bound to a session
func NewRecommendationFlow(store *session.Store, recommender Recommender, log *logger.Logger) *RecommendationFlow {
	return &RecommendationFlow{
		store:       store,
		recommender: recommender,
		log:         orNop(log).ForFlow(flowRecommendation),
	}
}

// Enter is called when the recommendation screen is shown. The first call
// after construction or Leave fetches; later calls return the current outcome.
func (f *RecommendationFlow) Enter(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if f.entered {
		f.mu.Unlock()
		st := f.store.Snapshot()
		return OutcomeOf(st), st.RecommendationErr
	}
	f.entered = true
	f.mu.Unlock()

	return f.fetch(ctx)
}

// Leave re-arms the fetch for the next Enter
func (f *RecommendationFlow) Leave() {
	f.mu.Lock()
	f.entered = false
	f.mu.Unlock()
}

// Retry fetches again at the user's request
func (f *RecommendationFlow) Retry(ctx context.Context) (Outcome, error) {
	return f.fetch(ctx)
}

// Outcome reports the current result without fetching
func (f *RecommendationFlow) Outcome() Outcome {
	return OutcomeOf(f.store.Snapshot())
}

func (f *RecommendationFlow) fetch(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if f.fetching {
		f.mu.Unlock()
		return OutcomePending, apperrors.Busy("recommendation fetch")
	}
	f.fetching = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.fetching = false
		f.mu.Unlock()
	}()

	req := preferences.BuildRequest(f.store.Snapshot().Preferences)
	f.store.BeginFetch()
	metrics.RecordWorkflowEvent(flowRecommendation, string(session.RecommendationFetching))

	if err := validator.Check(req); err != nil {
		appErr := apperrors.FromClient(err)
		f.store.FetchFailed(appErr)
		metrics.RecordWorkflowEvent(flowRecommendation, string(session.RecommendationFailed))
		return OutcomeFailed, appErr
	}

	resp, err := f.recommender.Get(ctx, req)
	if err != nil {
		appErr := fail(f.log, flowRecommendation, "fetch", err)
		f.store.FetchFailed(appErr)
		return OutcomeFailed, appErr
	}

	f.store.FetchSucceeded(resp)
	outcome := OutcomeItems
	if !resp.HasItems() {
		outcome = OutcomeNoItems
	}
	metrics.RecordWorkflowEvent(flowRecommendation, string(outcome))
	f.log.With("outfit_id", resp.OutfitID).Debugf("recommendation fetched: %s", outcome)
	return outcome, nil
}

// Items returns the filled slots of the current recommendation in display order
func (f *RecommendationFlow) Items() []client.SlotItem {
	return f.store.Snapshot().Recommendation.Ordered()
}
