package service_test

import (
	"testing"
	"time"

	"folio/internal/modules/viewport/service"
)

type recordingScroller struct {
	targets []int
}

func (s *recordingScroller) ScrollTo(pageIndex int) {
	s.targets = append(s.targets, pageIndex)
}

func navAt(ms int64) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(ms) * time.Millisecond)
}

func TestNavigatorLockHoldsUntilSettleDeadline(t *testing.T) {
	t.Parallel()
	scroller := &recordingScroller{}
	n := service.NewNavigator(400*time.Millisecond, scroller)

	if n.Locked(navAt(0)) {
		t.Fatalf("fresh navigator must be settled")
	}
	n.Request(navAt(0), 9)
	if !n.Locked(navAt(0)) || !n.Locked(navAt(399)) {
		t.Fatalf("lock must hold through the settle window")
	}
	if n.Locked(navAt(400)) {
		t.Fatalf("lock must release at the deadline")
	}
	if len(scroller.targets) != 1 || scroller.targets[0] != 9 {
		t.Fatalf("expected one scroll to page 9, got %v", scroller.targets)
	}
}

func TestNavigatorReRequestRestartsDeadlineLastWriterWins(t *testing.T) {
	t.Parallel()
	scroller := &recordingScroller{}
	n := service.NewNavigator(400*time.Millisecond, scroller)

	n.Request(navAt(0), 5)
	n.Request(navAt(300), 8)
	// The original deadline (400) has been replaced by 300+400.
	if !n.Locked(navAt(500)) {
		t.Fatalf("re-request must restart the settle timer")
	}
	if n.Locked(navAt(700)) {
		t.Fatalf("restarted lock must release at the new deadline")
	}
	if n.Target() != 8 {
		t.Fatalf("last writer must win, target = %d", n.Target())
	}
	if len(scroller.targets) != 2 {
		t.Fatalf("each request issues a scroll, got %v", scroller.targets)
	}
}

func TestNavigatorSettlesLazilyAndStaysSettled(t *testing.T) {
	t.Parallel()
	n := service.NewNavigator(100*time.Millisecond, nil)
	n.Request(navAt(0), 2)
	if n.Locked(navAt(1000)) {
		t.Fatalf("lock must have expired")
	}
	if n.Locked(navAt(50)) {
		t.Fatalf("once settled the machine stays settled until the next request")
	}
}
