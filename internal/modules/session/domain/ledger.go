package domain

import "time"

// PageDuration is one ledger entry: total active time accumulated on a
// page across all visits.
type PageDuration struct {
	PageIndex int
	Duration  time.Duration
}

// Ledger accumulates finalized per-page durations in first-visit order.
// Revisits merge into the existing entry rather than appending.
type Ledger struct {
	entries []PageDuration
	index   map[int]int
}

func NewLedger() *Ledger {
	return &Ledger{index: make(map[int]int)}
}

func (l *Ledger) Record(pageIndex int, d time.Duration) {
	if d < 0 {
		d = 0
	}
	if at, ok := l.index[pageIndex]; ok {
		l.entries[at].Duration += d
		return
	}
	l.index[pageIndex] = len(l.entries)
	l.entries = append(l.entries, PageDuration{PageIndex: pageIndex, Duration: d})
}

// Entries returns a copy of the ledger in first-visit order.
func (l *Ledger) Entries() []PageDuration {
	out := make([]PageDuration, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) DistinctPages() int {
	return len(l.entries)
}

func (l *Ledger) Total() time.Duration {
	var total time.Duration
	for _, e := range l.entries {
		total += e.Duration
	}
	return total
}

// AveragePerPage is computed on read, never cached. Zero when the ledger
// is empty.
func (l *Ledger) AveragePerPage() time.Duration {
	if len(l.entries) == 0 {
		return 0
	}
	return l.Total() / time.Duration(len(l.entries))
}
