package service

import "time"

// Tracker debounces visibility elections: an elected page becomes the
// externally visible current page only after staying elected for a quiet
// window, so fast scrolls do not thrash page-change notifications.
type Tracker struct {
	debounce time.Duration

	candidate int
	since     time.Time
	pending   bool
}

func NewTracker(debounce time.Duration) *Tracker {
	return &Tracker{debounce: debounce}
}

// Observe records the outcome of one election. Re-electing the pending
// candidate keeps its original timestamp; a different candidate restarts
// the quiet window. A batch with no intersecting pages elects nothing and
// drops any pending candidate.
func (t *Tracker) Observe(now time.Time, elected int, ok bool) {
	if !ok {
		t.pending = false
		return
	}
	if t.pending && t.candidate == elected {
		return
	}
	t.candidate = elected
	t.since = now
	t.pending = true
}

// Matured returns the pending candidate once it has survived the quiet
// window, unless it already is the current page.
func (t *Tracker) Matured(now time.Time, current int) (int, bool) {
	if !t.pending || t.candidate == current {
		return 0, false
	}
	if now.Sub(t.since) < t.debounce {
		return 0, false
	}
	return t.candidate, true
}

// Reset drops the pending candidate, used when an external request
// overrides the election synchronously.
func (t *Tracker) Reset() {
	t.pending = false
}
