package notifier

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultCooldown is the minimum time between two delivered messages
const DefaultCooldown = 10 * time.Minute

// ErrThrottled is returned when a message is dropped because of the cooldown
var ErrThrottled = errors.New("notification throttled")

// Throttled delivers at most one message per cooldown through the wrapped
// Notifier. Only successful deliveries start a new cooldown.
type Throttled struct {
	next     Notifier
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewThrottled wraps next. A cooldown of 0 or less uses DefaultCooldown.
func NewThrottled(next Notifier, cooldown time.Duration) *Throttled {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Throttled{next: next, cooldown: cooldown, now: time.Now}
}

// Notify forwards msg unless the previous delivery is younger than the cooldown
func (t *Throttled) Notify(ctx context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.cooldown {
		return ErrThrottled
	}

	if err := t.next.Notify(ctx, msg); err != nil {
		return err
	}
	t.last = now
	return nil
}

// Next returns when the next message would be delivered
func (t *Throttled) Next() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last.IsZero() {
		return time.Time{}
	}
	return t.last.Add(t.cooldown)
}
