package service_test

import (
	"testing"
	"time"

	"folio/internal/modules/viewport/service"
)

func TestTrackerElectionMaturesAfterQuietWindow(t *testing.T) {
	t.Parallel()
	tr := service.NewTracker(150 * time.Millisecond)

	tr.Observe(navAt(0), 3, true)
	if _, ok := tr.Matured(navAt(100), 1); ok {
		t.Fatalf("election must not propagate inside the quiet window")
	}
	page, ok := tr.Matured(navAt(150), 1)
	if !ok || page != 3 {
		t.Fatalf("expected page 3 matured, got %d (ok=%v)", page, ok)
	}
}

func TestTrackerRestartsWindowWhenElectionChanges(t *testing.T) {
	t.Parallel()
	tr := service.NewTracker(150 * time.Millisecond)

	tr.Observe(navAt(0), 3, true)
	tr.Observe(navAt(100), 4, true)
	if _, ok := tr.Matured(navAt(200), 1); ok {
		t.Fatalf("switching candidates must restart the quiet window")
	}
	if page, ok := tr.Matured(navAt(250), 1); !ok || page != 4 {
		t.Fatalf("expected page 4 after restart, got %d (ok=%v)", page, ok)
	}
}

func TestTrackerReElectionKeepsOriginalTimestamp(t *testing.T) {
	t.Parallel()
	tr := service.NewTracker(150 * time.Millisecond)

	tr.Observe(navAt(0), 3, true)
	tr.Observe(navAt(100), 3, true)
	if page, ok := tr.Matured(navAt(150), 1); !ok || page != 3 {
		t.Fatalf("re-electing the candidate must not restart the window, got %d (ok=%v)", page, ok)
	}
}

func TestTrackerNeverProposesCurrentPage(t *testing.T) {
	t.Parallel()
	tr := service.NewTracker(150 * time.Millisecond)
	tr.Observe(navAt(0), 3, true)
	if _, ok := tr.Matured(navAt(500), 3); ok {
		t.Fatalf("electing the current page must not propagate")
	}
}

func TestTrackerEmptyElectionDropsCandidate(t *testing.T) {
	t.Parallel()
	tr := service.NewTracker(150 * time.Millisecond)
	tr.Observe(navAt(0), 3, true)
	tr.Observe(navAt(50), 0, false)
	if _, ok := tr.Matured(navAt(500), 1); ok {
		t.Fatalf("an empty election must drop the pending candidate")
	}
}

func TestTrackerResetDropsCandidate(t *testing.T) {
	t.Parallel()
	tr := service.NewTracker(150 * time.Millisecond)
	tr.Observe(navAt(0), 3, true)
	tr.Reset()
	if _, ok := tr.Matured(navAt(500), 1); ok {
		t.Fatalf("reset must drop the pending candidate")
	}
}
