// Package commute follows a single lot across snapshots while the user is on the way.
package commute

import (
	"context"
	"errors"
	"time"

	"github.com/nutcparking/parkspace/internal/lot"
	"github.com/nutcparking/parkspace/internal/storage"
)

// DefaultInterval is the refresh cadence while commuting
const DefaultInterval = 30 * time.Second

// ErrLotNotFound is returned when no lot in the current snapshot has the followed name
var ErrLotNotFound = errors.New("lot not found")

// Update is the followed lot as of one snapshot
type Update struct {
	Lot     lot.Lot   `json:"lot"`
	Found   bool      `json:"found"`   // the lot is in this snapshot
	Changed bool      `json:"changed"` // available count differs from the previous update
	Stale   bool      `json:"stale"`   // the latest refresh failed
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// Tracker follows one lot by exact name, optionally restricted to one type
type Tracker struct {
	name  string
	typ   lot.Type
	store *storage.Store

	last    lot.Lot
	hasLast bool
}

// NewTracker creates a tracker for the lot called name. An empty typ matches any type.
func NewTracker(store *storage.Store, name string, typ lot.Type) *Tracker {
	return &Tracker{name: name, typ: typ, store: store}
}

// Name returns the followed lot name
func (t *Tracker) Name() string {
	return t.name
}

// Locate finds the followed lot in lots
func (t *Tracker) Locate(lots []lot.Lot) (lot.Lot, error) {
	for _, l := range lots {
		if l.Name != t.name {
			continue
		}
		if t.typ != "" && l.Type != t.typ {
			continue
		}
		return l, nil
	}
	return lot.Lot{}, ErrLotNotFound
}

// Observe turns a store state into an update. When the lot is missing from the
// state, the last known record is carried forward with Found set to false.
// Observe is not safe for concurrent use.
func (t *Tracker) Observe(st storage.State) Update {
	u := Update{
		Stale:   st.Err != nil,
		Message: st.Message,
		At:      st.UpdatedAt,
	}
	if !st.FailedAt.IsZero() && st.FailedAt.After(u.At) {
		u.At = st.FailedAt
	}

	current, err := t.Locate(st.Lots)
	if err != nil {
		u.Lot = t.last
		return u
	}

	u.Lot = current
	u.Found = true
	u.Changed = !t.hasLast || t.last.AvailableCount != current.AvailableCount || t.last.TotalCapacity != current.TotalCapacity

	t.last = current
	t.hasLast = true
	return u
}

// Follow emits an update for the current state and then for every state the
// store publishes, until ctx is done. The channel is closed on return.
func (t *Tracker) Follow(ctx context.Context) <-chan Update {
	states, unsubscribe := t.store.Subscribe()
	out := make(chan Update, 1)

	go func() {
		defer close(out)
		defer unsubscribe()

		send := func(st storage.State) bool {
			select {
			case out <- t.Observe(st):
				return true
			case <-ctx.Done():
				return false
			}
		}

		if st := t.store.Current(); st.Version > 0 {
			if !send(st) {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case st, ok := <-states:
				if !ok || !send(st) {
					return
				}
			}
		}
	}()

	return out
}
