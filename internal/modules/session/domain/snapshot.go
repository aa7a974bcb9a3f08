package domain

import "time"

// Snapshot is the read-only view handed to the persistence collaborator
// when a session closes.
type Snapshot struct {
	SessionID    string
	DocumentPath string
	StartedAt    time.Time
	EndedAt      time.Time
	// ActiveDuration excludes paused wall-clock time.
	ActiveDuration time.Duration
	Entries        []PageDuration
}
