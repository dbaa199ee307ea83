package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/pratik-mahalle/wardroberec/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore(nil)
	st := s.Snapshot()

	assert.Equal(t, RecommendationUnrequested, st.RecommendationStatus)
	assert.Equal(t, DefaultStars, st.RatingStars)
	assert.Nil(t, st.Recommendation)
	assert.False(t, st.RatingVisible)
	assert.False(t, st.RatingSubmitting)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore(nil)
	s.SetPreferences(Preferences{Occasion: "Casual", Keywords: []string{"boho"}})

	st := s.Snapshot()
	st.Preferences.Keywords[0] = "changed"
	st.Preferences.Occasion = "Formal"

	again := s.Snapshot()
	assert.Equal(t, "Casual", again.Preferences.Occasion)
	assert.Equal(t, []string{"boho"}, again.Preferences.Keywords)
}

func TestSetPreferencesCopiesInput(t *testing.T) {
	s := NewStore(nil)
	kw := []string{"boho", "chic"}
	s.SetPreferences(Preferences{Occasion: "Casual", Keywords: kw})
	kw[0] = "punk"

	assert.Equal(t, []string{"boho", "chic"}, s.Snapshot().Preferences.Keywords)
}

func TestSubscribeReceivesEvents(t *testing.T) {
	s := NewStore(nil)
	events, cancel := s.Subscribe()
	defer cancel()

	s.SetPreferences(Preferences{Occasion: "Work"})
	ev := <-events
	assert.Equal(t, EventPreferencesChanged, ev.Type)
	assert.Equal(t, "Work", ev.State.Preferences.Occasion)

	s.BeginFetch()
	ev = <-events
	assert.Equal(t, EventRecommendationChanged, ev.Type)
	assert.Equal(t, RecommendationFetching, ev.State.RecommendationStatus)
}

func TestCancelClosesChannel(t *testing.T) {
	s := NewStore(nil)
	events, cancel := s.Subscribe()
	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok)

	// publishing after cancel must not panic
	s.SetStars(3)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	s := NewStore(nil)
	_, cancel := s.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer*2; i++ {
		s.SetStars(i%5 + 1)
	}
	assert.Equal(t, (subscriberBuffer*2-1)%5+1, s.Snapshot().RatingStars)
}

func TestFetchLifecycle(t *testing.T) {
	s := NewStore(nil)
	resp := &client.RecommendationResponse{OutfitID: "7", Items: map[client.Slot]*client.OutfitItem{
		client.SlotTop: {ID: 1},
	}}

	s.BeginFetch()
	s.FetchSucceeded(resp)
	st := s.Snapshot()
	assert.Equal(t, RecommendationFetched, st.RecommendationStatus)
	assert.Same(t, resp, st.Recommendation)
	assert.True(t, st.RatingVisible)

	failure := errors.New("boom")
	s.BeginFetch()
	s.FetchFailed(failure)
	st = s.Snapshot()
	assert.Equal(t, RecommendationFailed, st.RecommendationStatus)
	assert.Nil(t, st.Recommendation)
	assert.Equal(t, failure, st.RecommendationErr)
	assert.False(t, st.RatingVisible)
}

func TestSetStarsClamps(t *testing.T) {
	s := NewStore(nil)
	assert.Equal(t, 1, s.SetStars(0))
	assert.Equal(t, 5, s.SetStars(9))
	assert.Equal(t, 3, s.SetStars(3))
}

// fetchedStore returns a store showing the rating prompt for outfit "7"
func fetchedStore() *Store {
	s := NewStore(nil)
	s.BeginFetch()
	s.FetchSucceeded(&client.RecommendationResponse{
		OutfitID: "7",
		Items:    map[client.Slot]*client.OutfitItem{client.SlotTop: {ID: 3}},
	})
	return s
}

func TestTryBeginRatingGuards(t *testing.T) {
	s := fetchedStore()

	st, err := s.TryBeginRating()
	require.NoError(t, err)
	assert.True(t, st.RatingSubmitting)
	require.NotNil(t, st.Recommendation)
	assert.Equal(t, "7", st.Recommendation.OutfitID)

	_, err = s.TryBeginRating()
	assert.ErrorIs(t, err, ErrRatingInFlight, "second begin must be refused while submitting")

	s.EndRating(errors.New("offline"))
	_, err = s.TryBeginRating()
	assert.NoError(t, err, "a failed submit can be retried")

	s.EndRating(nil)
	_, err = s.TryBeginRating()
	assert.ErrorIs(t, err, ErrRatingClosed, "a rated outfit cannot be rated again")
}

func TestTryBeginRatingRequiresFetchedRecommendation(t *testing.T) {
	s := NewStore(nil)
	_, err := s.TryBeginRating()
	assert.ErrorIs(t, err, ErrNothingToRate)

	s = fetchedStore()
	s.FetchFailed(errors.New("offline"))
	st, err := s.TryBeginRating()
	assert.ErrorIs(t, err, ErrNothingToRate)
	assert.False(t, st.RatingSubmitting)
	assert.Equal(t, RecommendationFailed, st.RecommendationStatus)
}

func TestTryBeginRatingRacesFetchFailure(t *testing.T) {
	for i := 0; i < 200; i++ {
		s := fetchedStore()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.FetchFailed(errors.New("offline"))
		}()
		var (
			st  State
			err error
		)
		go func() {
			defer wg.Done()
			st, err = s.TryBeginRating()
		}()
		wg.Wait()

		if err == nil {
			require.NotNil(t, st.Recommendation, "granted submission must carry the outfit")
			assert.Equal(t, "7", st.Recommendation.OutfitID)
		} else {
			assert.ErrorIs(t, err, ErrNothingToRate)
		}
	}
}

func TestTryBeginRatingConcurrent(t *testing.T) {
	s := fetchedStore()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.TryBeginRating(); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, granted)
}

func TestEndRating(t *testing.T) {
	t.Run("success hides prompt", func(t *testing.T) {
		s := fetchedStore()
		_, err := s.TryBeginRating()
		require.NoError(t, err)
		s.EndRating(nil)

		st := s.Snapshot()
		assert.False(t, st.RatingSubmitting)
		assert.False(t, st.RatingVisible)
		assert.NoError(t, st.RatingErr)
	})

	t.Run("failure keeps prompt and stars", func(t *testing.T) {
		s := fetchedStore()
		s.SetStars(2)
		_, err := s.TryBeginRating()
		require.NoError(t, err)
		failure := errors.New("offline")
		s.EndRating(failure)

		st := s.Snapshot()
		assert.False(t, st.RatingSubmitting)
		assert.True(t, st.RatingVisible)
		assert.Equal(t, 2, st.RatingStars)
		assert.Equal(t, failure, st.RatingErr)
	})
}
