package draft

import (
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/flowdraft/internal/log"
)

// Store is the single source of truth for the workflow draft of a session.
// Activities are kept as an ordered map keyed by id: order holds insertion
// order and byID enforces id uniqueness.
type Store struct {
	mu    sync.RWMutex
	name  string
	order []string
	byID  map[string]Activity
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the UUID generator used for activity ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// NewStore creates an empty draft.
func NewStore(opts ...Option) *Store {
	s := &Store{
		byID:  make(map[string]Activity),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetName replaces the workflow name.
func (s *Store) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// Name returns the current workflow name.
func (s *Store) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// AddActivity appends an activity with the default timeout. An empty name is
// ignored and reported as false; true tells the caller to clear its pending
// activity-name input.
func (s *Store) AddActivity(name string) (Activity, bool) {
	if name == "" {
		return Activity{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.hasLocked(id) {
		log.Warn(log.CatDraft, "Activity id collision, regenerating", "id", id)
		id = s.newID()
	}

	a := Activity{
		ID:             id,
		Name:           name,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
	s.order = append(s.order, id)
	s.byID[id] = a

	log.Debug(log.CatDraft, "Activity added", "id", id, "name", name, "count", len(s.order))
	return a, true
}

// Activities returns the activities in insertion order.
func (s *Store) Activities() []Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activitiesLocked()
}

// Len returns the number of activities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Snapshot returns a copy of the draft that is safe to serialize or render
// while the store keeps changing.
func (s *Store) Snapshot() Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Workflow{
		Name:       s.name,
		Activities: s.activitiesLocked(),
	}
}

// Reset discards the name and all activities.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = ""
	s.order = nil
	s.byID = make(map[string]Activity)
	log.Debug(log.CatDraft, "Draft reset")
}

func (s *Store) hasLocked(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *Store) activitiesLocked() []Activity {
	out := make([]Activity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
