package domain

import "time"

// State tracks active reading time for a session and for the page
// currently open. Pausing is implemented by shifting the start markers
// forward on resume, so "elapsed = now - start" holds at every unpaused
// instant and no accumulated-pause total has to be kept in sync.
type State struct {
	SessionStart   time.Time
	PauseStartedAt time.Time // zero iff not paused
	CurrentPage    int
	PageMarkedAt   time.Time
}

func NewState(now time.Time, pageIndex int) *State {
	return &State{
		SessionStart: now,
		CurrentPage:  pageIndex,
		PageMarkedAt: now,
	}
}

func (s *State) Paused() bool {
	return !s.PauseStartedAt.IsZero()
}

// TogglePause pauses, or resumes by shifting both start markers forward
// by the pause length. A zero-length pause resumes as a no-op.
func (s *State) TogglePause(now time.Time) {
	if !s.Paused() {
		s.PauseStartedAt = now
		return
	}
	paused := now.Sub(s.PauseStartedAt)
	s.SessionStart = s.SessionStart.Add(paused)
	s.PageMarkedAt = s.PageMarkedAt.Add(paused)
	s.PauseStartedAt = time.Time{}
}

// SessionElapsed is frozen at the pause instant while paused, live
// otherwise.
func (s *State) SessionElapsed(now time.Time) time.Duration {
	if s.Paused() {
		return s.PauseStartedAt.Sub(s.SessionStart)
	}
	return now.Sub(s.SessionStart)
}

func (s *State) PageElapsed(now time.Time) time.Duration {
	if s.Paused() {
		return s.PauseStartedAt.Sub(s.PageMarkedAt)
	}
	return now.Sub(s.PageMarkedAt)
}

// ChangePage switches the tracked page. While unpaused it closes the old
// page's timing window and reports its duration; while paused only the
// page index updates, so the new page starts timing from the marker as
// shifted on resume.
func (s *State) ChangePage(now time.Time, pageIndex int) (PageDuration, bool) {
	if pageIndex == s.CurrentPage {
		return PageDuration{}, false
	}
	if s.Paused() {
		s.CurrentPage = pageIndex
		return PageDuration{}, false
	}
	finished := PageDuration{PageIndex: s.CurrentPage, Duration: now.Sub(s.PageMarkedAt)}
	s.CurrentPage = pageIndex
	s.PageMarkedAt = now
	return finished, true
}
