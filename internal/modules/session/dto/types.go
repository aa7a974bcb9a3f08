package dto

import "time"

type StartInput struct {
	DocumentPath string
	// PageIndex zero means resume from the stored position, falling back
	// to page 1.
	PageIndex int
}

type StartOutput struct {
	SessionID string
	PageIndex int
	StartedAt time.Time
}

type PageDurationOutput struct {
	PageIndex  int
	DurationMs int64
}

type StatsOutput struct {
	CurrentPage       int
	Paused            bool
	SessionMs         int64
	PageMs            int64
	DistinctPagesRead int
	TotalMs           int64
	AverageMs         int64
	Entries           []PageDurationOutput
}

type EndOutput struct {
	SessionID  string
	DurationMs int64
	PagesRead  int
}

type HistoryInput struct {
	DocumentPath string
	Limit        int
}

type SessionOutput struct {
	SessionID  string
	StartedAt  time.Time
	EndedAt    time.Time
	DurationMs int64
}

type HistoryOutput struct {
	Totals   []PageDurationOutput
	Sessions []SessionOutput
}
