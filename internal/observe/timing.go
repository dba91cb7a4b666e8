package observe

import "time"

// Clock returns the current time. Tests swap it for a fixed sequence.
type Clock func() time.Time

// Timing records start/end timestamps of a single call
type Timing struct {
	StartedAt   time.Time
	CompletedAt time.Time

	clock Clock
}

// NewTimingWithClock starts a timing using clock. A nil clock means time.Now.
func NewTimingWithClock(clock Clock) *Timing {
	if clock == nil {
		clock = time.Now
	}
	return &Timing{
		StartedAt: clock(),
		clock:     clock,
	}
}

// Complete records completion time
func (t *Timing) Complete() {
	t.CompletedAt = t.clock()
}

// Done reports whether Complete has been called
func (t *Timing) Done() bool {
	return !t.CompletedAt.IsZero()
}

// Duration returns execution duration, or the running time if not completed
func (t *Timing) Duration() time.Duration {
	if !t.Done() {
		return t.clock().Sub(t.StartedAt)
	}
	return t.CompletedAt.Sub(t.StartedAt)
}
