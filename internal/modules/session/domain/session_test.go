package domain_test

import (
	"testing"
	"time"

	"folio/internal/modules/session/domain"
)

func at(ms int64) time.Time {
	return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(ms) * time.Millisecond)
}

func TestPauseFreezesAndResumeShiftsStart(t *testing.T) {
	t.Parallel()
	s := domain.NewState(at(0), 1)

	if got := s.SessionElapsed(at(5000)); got != 5*time.Second {
		t.Fatalf("live elapsed = %v", got)
	}
	s.TogglePause(at(5000))
	if !s.Paused() {
		t.Fatalf("expected paused")
	}
	// Frozen while paused, regardless of how much real time passes.
	if got := s.SessionElapsed(at(9000)); got != 5*time.Second {
		t.Fatalf("paused elapsed = %v, want 5s", got)
	}
	s.TogglePause(at(9000))
	if s.Paused() {
		t.Fatalf("expected resumed")
	}
	// Immediately after resume the elapsed equals the pre-pause value.
	if got := s.SessionElapsed(at(9000)); got != 5*time.Second {
		t.Fatalf("elapsed after resume = %v, want 5s", got)
	}
	if got := s.SessionElapsed(at(10000)); got != 6*time.Second {
		t.Fatalf("elapsed 1s after resume = %v, want 6s", got)
	}
}

func TestZeroLengthPauseIsNoop(t *testing.T) {
	t.Parallel()
	s := domain.NewState(at(0), 1)
	s.TogglePause(at(3000))
	s.TogglePause(at(3000))
	if s.Paused() {
		t.Fatalf("expected resumed")
	}
	if got := s.SessionElapsed(at(4000)); got != 4*time.Second {
		t.Fatalf("elapsed = %v, want 4s", got)
	}
}

func TestDoubleToggleInSameTickNetsZeroShift(t *testing.T) {
	t.Parallel()
	s := domain.NewState(at(0), 2)
	start := s.SessionStart
	marker := s.PageMarkedAt
	for i := 0; i < 3; i++ {
		s.TogglePause(at(2000))
		s.TogglePause(at(2000))
	}
	if !s.SessionStart.Equal(start) || !s.PageMarkedAt.Equal(marker) {
		t.Fatalf("repeated same-tick toggles must not shift markers")
	}
}

func TestPageElapsedTracksMarker(t *testing.T) {
	t.Parallel()
	s := domain.NewState(at(0), 1)
	if d, ok := s.ChangePage(at(2000), 2); !ok || d.PageIndex != 1 || d.Duration != 2*time.Second {
		t.Fatalf("change page: %+v ok=%v", d, ok)
	}
	if got := s.PageElapsed(at(2500)); got != 500*time.Millisecond {
		t.Fatalf("page elapsed = %v", got)
	}
	s.TogglePause(at(3000))
	if got := s.PageElapsed(at(8000)); got != time.Second {
		t.Fatalf("paused page elapsed = %v, want 1s", got)
	}
	s.TogglePause(at(8000))
	if got := s.PageElapsed(at(8000)); got != time.Second {
		t.Fatalf("page elapsed after resume = %v, want 1s", got)
	}
}

func TestChangePageWhilePausedOnlyUpdatesIndex(t *testing.T) {
	t.Parallel()
	s := domain.NewState(at(0), 3)
	s.TogglePause(at(1000))
	d, ok := s.ChangePage(at(4000), 7)
	if ok {
		t.Fatalf("paused page change must not emit a duration, got %+v", d)
	}
	if s.CurrentPage != 7 {
		t.Fatalf("page index must still update, got %d", s.CurrentPage)
	}
	// Resuming 5s after the pause began shifts the marker so the new
	// page resumes timing from the pre-pause window.
	s.TogglePause(at(6000))
	if got := s.PageElapsed(at(6000)); got != time.Second {
		t.Fatalf("page elapsed at resume = %v, want 1s", got)
	}
}

func TestChangePageToSamePageEmitsNothing(t *testing.T) {
	t.Parallel()
	s := domain.NewState(at(0), 5)
	if _, ok := s.ChangePage(at(1000), 5); ok {
		t.Fatalf("same-page change must be a no-op")
	}
	if got := s.PageElapsed(at(1500)); got != 1500*time.Millisecond {
		t.Fatalf("marker must not reset on same-page change, got %v", got)
	}
}
