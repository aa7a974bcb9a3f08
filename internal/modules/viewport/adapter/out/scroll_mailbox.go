package out

import (
	"sync"

	viewportout "folio/internal/modules/viewport/port/out"
)

// ScrollMailbox buffers the latest programmatic scroll target for a
// pull-based view: the TUI polls Take on its tick. Last writer wins;
// intermediate targets are not queued.
type ScrollMailbox struct {
	mu      sync.Mutex
	target  int
	pending bool
}

func NewScrollMailbox() *ScrollMailbox {
	return &ScrollMailbox{}
}

var _ viewportout.Scroller = (*ScrollMailbox)(nil)

func (m *ScrollMailbox) ScrollTo(pageIndex int) {
	m.mu.Lock()
	m.target = pageIndex
	m.pending = true
	m.mu.Unlock()
}

// Take consumes the pending target, if any.
func (m *ScrollMailbox) Take() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending {
		return 0, false
	}
	m.pending = false
	return m.target, true
}
