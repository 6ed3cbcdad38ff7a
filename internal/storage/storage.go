package storage

import (
	"sync"
	"time"

	"github.com/nutcparking/parkspace/internal/lot"
)

// State is a point-in-time view of the store
type State struct {
	Lots      []lot.Lot
	UpdatedAt time.Time // capture time of Lots; zero until the first success
	Err       error     // error of the latest refresh, nil after a success
	Message   string    // human readable form of Err
	FailedAt  time.Time
	Version   uint64 // incremented on every write
}

// Stale reports whether the lots are older than the latest refresh attempt
func (s State) Stale() bool {
	return s.Err != nil && !s.UpdatedAt.IsZero()
}

// Ready reports whether any lots have been published
func (s State) Ready() bool {
	return !s.UpdatedAt.IsZero()
}

// Store handles the latest snapshot and its subscribers
type Store struct {
	mu       sync.RWMutex
	state    State
	describe func(error) string
	subs     map[int]chan State
	nextID   int
}

// New creates an empty Store. describe turns refresh errors into the message
// shown to users; nil uses the error text.
func New(describe func(error) string) *Store {
	if describe == nil {
		describe = func(err error) string { return err.Error() }
	}
	return &Store{
		describe: describe,
		subs:     make(map[int]chan State),
	}
}

// Publish replaces the lots with a new collection captured at at
func (s *Store) Publish(lots []lot.Lot, at time.Time) State {
	owned := make([]lot.Lot, len(lots))
	copy(owned, lots)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{
		Lots:      owned,
		UpdatedAt: at,
		Version:   s.state.Version + 1,
	}
	s.broadcast()
	return s.snapshot()
}

// Fail records a failed refresh. The current lots are left untouched.
func (s *Store) Fail(err error, at time.Time) State {
	if err == nil {
		return s.Current()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Err = err
	s.state.Message = s.describe(err)
	s.state.FailedAt = at
	s.state.Version++
	s.broadcast()
	return s.snapshot()
}

// Current returns the latest state. The lot slice is a copy.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Subscribe returns a channel that receives every new state. A slow reader
// only misses intermediate states; the channel always ends up holding the
// newest one. Call the returned function to unsubscribe and close the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// snapshot must be called with s.mu held
func (s *Store) snapshot() State {
	st := s.state
	if st.Lots != nil {
		st.Lots = make([]lot.Lot, len(s.state.Lots))
		copy(st.Lots, s.state.Lots)
	}
	return st
}

// broadcast must be called with s.mu held for writing
func (s *Store) broadcast() {
	for _, ch := range s.subs {
		st := s.snapshot()
		select {
		case ch <- st:
			continue
		default:
		}
		// drop the unread state, then deliver the new one
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
