// Package session holds the per-session preference and recommendation state.
// Nothing in it is persisted; a Store lives as long as the app session.
package session

import (
	"errors"
	"sync"

	"github.com/pratik-mahalle/wardroberec/internal/pkg/logger"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// Preferences are the user's current filter selections
type Preferences struct {
	Category string   `json:"category,omitempty"`
	Color    string   `json:"color,omitempty"`
	Material string   `json:"material,omitempty"`
	Occasion string   `json:"occasion"`
	Keywords []string `json:"keywords,omitempty"`
}

// RecommendationStatus tracks the recommendation fetch
type RecommendationStatus string

const (
	RecommendationUnrequested RecommendationStatus = "unrequested"
	RecommendationFetching    RecommendationStatus = "fetching"
	RecommendationFetched     RecommendationStatus = "fetched"
	RecommendationFailed      RecommendationStatus = "fetch_failed"
)

// DefaultStars is the preselected rating
const DefaultStars = 5

// State is a point-in-time copy of the session
type State struct {
	Preferences          Preferences
	RecommendationStatus RecommendationStatus
	// Recommendation is replaced wholesale on every fetch and never mutated.
	Recommendation    *client.RecommendationResponse
	RecommendationErr error
	RatingStars       int
	RatingVisible     bool
	RatingSubmitting  bool
	RatingErr         error
}

// EventType names what changed
type EventType string

const (
	EventPreferencesChanged    EventType = "preferences_changed"
	EventRecommendationChanged EventType = "recommendation_changed"
	EventRatingChanged         EventType = "rating_changed"
)

// Event is published after every mutation
type Event struct {
	Type  EventType
	State State
}

const subscriberBuffer = 16

// Store owns the session state. All mutations go through its methods and
// are announced to subscribers.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers map[int]chan Event
	nextID      int
	log         *logger.Logger
}

// NewStore creates an empty session
func NewStore(log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		state: State{
			RecommendationStatus: RecommendationUnrequested,
			RatingStars:          DefaultStars,
		},
		subscribers: make(map[int]chan Event),
		log:         log,
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() State {
	st := s.state
	st.Preferences.Keywords = append([]string(nil), s.state.Preferences.Keywords...)
	if len(st.Preferences.Keywords) == 0 {
		st.Preferences.Keywords = nil
	}
	return st
}

// Subscribe returns a channel of state changes and a cancel function.
// Slow subscribers miss events rather than block the session.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Event, subscriberBuffer)
	s.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

// update applies fn under the write lock and publishes the result
func (s *Store) update(typ EventType, fn func(st *State)) State {
	snap, _ := s.updateIf(typ, func(st *State) bool {
		fn(st)
		return true
	})
	return snap
}

// updateIf applies fn under the write lock and publishes only when fn
// reports a change
func (s *Store) updateIf(typ EventType, fn func(st *State) bool) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn(&s.state) {
		return s.copyLocked(), false
	}
	snap := s.copyLocked()
	ev := Event{Type: typ, State: snap}
	for id, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			s.log.With("subscriber", id).Debugf("dropped %s event for slow subscriber", typ)
		}
	}
	return snap, true
}

// SetPreferences replaces the preference selections
func (s *Store) SetPreferences(p Preferences) {
	p.Keywords = append([]string(nil), p.Keywords...)
	s.update(EventPreferencesChanged, func(st *State) {
		st.Preferences = p
	})
}

// BeginFetch marks a recommendation fetch as in flight
func (s *Store) BeginFetch() {
	s.update(EventRecommendationChanged, func(st *State) {
		st.RecommendationStatus = RecommendationFetching
		st.RecommendationErr = nil
	})
}

// FetchSucceeded stores a new recommendation, replacing the previous one,
// and brings up the rating prompt
func (s *Store) FetchSucceeded(resp *client.RecommendationResponse) {
	s.update(EventRecommendationChanged, func(st *State) {
		st.RecommendationStatus = RecommendationFetched
		st.Recommendation = resp
		st.RecommendationErr = nil
		st.RatingVisible = true
		st.RatingErr = nil
	})
}

// FetchFailed records a failed fetch. The previous recommendation is dropped
// so a failure can never be mistaken for a stale result.
func (s *Store) FetchFailed(err error) {
	s.update(EventRecommendationChanged, func(st *State) {
		st.RecommendationStatus = RecommendationFailed
		st.Recommendation = nil
		st.RecommendationErr = err
		st.RatingVisible = false
	})
}

// SetStars selects a star rating, clamped to the valid range
func (s *Store) SetStars(n int) int {
	return s.update(EventRatingChanged, func(st *State) {
		st.RatingStars = client.ClampRating(n)
	}).RatingStars
}

// SetRatingVisible shows or hides the rating prompt
func (s *Store) SetRatingVisible(visible bool) {
	s.update(EventRatingChanged, func(st *State) {
		st.RatingVisible = visible
	})
}

// Reasons TryBeginRating refuses to start a submission
var (
	ErrNothingToRate  = errors.New("no fetched recommendation to rate")
	ErrRatingInFlight = errors.New("rating submission already in flight")
	ErrRatingClosed   = errors.New("rating prompt is closed")
)

// TryBeginRating sets the submitting flag when a fetched recommendation is
// showing its rating prompt and no submission is running. The checks and
// the flag change happen under one lock, so the returned State always holds
// the recommendation being rated. On refusal nothing changes and the error
// says why.
func (s *Store) TryBeginRating() (State, error) {
	var reason error
	st, ok := s.updateIf(EventRatingChanged, func(st *State) bool {
		switch {
		case st.RecommendationStatus != RecommendationFetched || st.Recommendation == nil:
			reason = ErrNothingToRate
		case st.RatingSubmitting:
			reason = ErrRatingInFlight
		case !st.RatingVisible:
			reason = ErrRatingClosed
		default:
			st.RatingSubmitting = true
			st.RatingErr = nil
			return true
		}
		return false
	})
	if !ok {
		return st, reason
	}
	return st, nil
}

// EndRating clears the submitting flag. Success hides the prompt; failure
// keeps it visible with the selected stars.
func (s *Store) EndRating(err error) {
	s.update(EventRatingChanged, func(st *State) {
		st.RatingSubmitting = false
		st.RatingErr = err
		if err == nil {
			st.RatingVisible = false
		}
	})
}
