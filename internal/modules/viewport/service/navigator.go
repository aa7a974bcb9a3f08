package service

import (
	"time"

	out "folio/internal/modules/viewport/port/out"
)

// Navigator arbitrates between organic visibility elections and external
// page requests. It is a two-state machine: settled, or inside a
// programmatic scroll whose lock holds until a settle deadline passes.
// A request arriving mid-scroll restarts the deadline and re-targets the
// scroll; intermediate targets are not queued.
type Navigator struct {
	settle   time.Duration
	scroller out.Scroller

	locked   bool
	deadline time.Time
	target   int
}

func NewNavigator(settle time.Duration, scroller out.Scroller) *Navigator {
	return &Navigator{settle: settle, scroller: scroller}
}

// Request enters (or re-enters) the programmatic-scroll state and issues
// the scroll-into-view request. Last writer wins.
func (n *Navigator) Request(now time.Time, pageIndex int) {
	n.locked = true
	n.deadline = now.Add(n.settle)
	n.target = pageIndex
	if n.scroller != nil {
		n.scroller.ScrollTo(pageIndex)
	}
}

// Locked reports whether the navigation lock is held at the given instant.
// The lock expires lazily: the first check past the deadline settles the
// machine.
func (n *Navigator) Locked(now time.Time) bool {
	if !n.locked {
		return false
	}
	if now.Before(n.deadline) {
		return true
	}
	n.locked = false
	return false
}

// Target returns the page of the most recent programmatic scroll.
func (n *Navigator) Target() int { return n.target }
