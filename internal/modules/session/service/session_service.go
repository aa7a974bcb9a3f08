package service

import (
	"sync"
	"time"

	"folio/internal/modules/session/domain"
	"folio/internal/platform/clock"
	apperrors "folio/internal/platform/errors"
	"folio/internal/platform/id"
)

// SessionService owns the live session clock and ledger for one open
// document. No other component mutates the timing state; readers get
// derived values computed against the clock on demand.
type SessionService struct {
	clk   clock.Clock
	idGen id.Generator

	mu           sync.Mutex
	sessionID    string
	documentPath string
	openedAt     time.Time
	state        *domain.State
	ledger       *domain.Ledger
}

func NewSessionService(clk clock.Clock, idGen id.Generator) *SessionService {
	return &SessionService{clk: clk, idGen: idGen}
}

// Start opens a fresh session. Any previous session state is discarded;
// persistence of a finished session is the usecase's concern.
func (s *SessionService) Start(documentPath string, pageIndex int) (string, time.Time) {
	now := s.clk.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = s.idGen.New()
	s.documentPath = documentPath
	s.openedAt = now
	s.state = domain.NewState(now, pageIndex)
	s.ledger = domain.NewLedger()
	return s.sessionID, now
}

func (s *SessionService) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil
}

func (s *SessionService) TogglePause() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return false, apperrors.ErrNoActiveSession
	}
	s.state.TogglePause(s.clk.Now())
	return s.state.Paused(), nil
}

func (s *SessionService) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil && s.state.Paused()
}

func (s *SessionService) RecordPageChange(pageIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return apperrors.ErrNoActiveSession
	}
	if finished, ok := s.state.ChangePage(s.clk.Now(), pageIndex); ok {
		s.ledger.Record(finished.PageIndex, finished.Duration)
	}
	return nil
}

func (s *SessionService) SessionElapsed() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return 0, apperrors.ErrNoActiveSession
	}
	return s.state.SessionElapsed(s.clk.Now()), nil
}

func (s *SessionService) PageElapsed() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return 0, apperrors.ErrNoActiveSession
	}
	return s.state.PageElapsed(s.clk.Now()), nil
}

// Stats returns the current page, pause state, live elapsed values and a
// ledger copy. Everything derived is recomputed here, never cached.
func (s *SessionService) Stats() (int, bool, time.Duration, time.Duration, *domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return 0, false, 0, 0, nil, apperrors.ErrNoActiveSession
	}
	now := s.clk.Now()
	ledger := domain.NewLedger()
	for _, e := range s.ledger.Entries() {
		ledger.Record(e.PageIndex, e.Duration)
	}
	return s.state.CurrentPage, s.state.Paused(), s.state.SessionElapsed(now), s.state.PageElapsed(now), ledger, nil
}

// End closes the current page's timing window, folds it into the ledger
// and returns the final snapshot. The session becomes inactive.
func (s *SessionService) End() (domain.Snapshot, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return domain.Snapshot{}, 0, apperrors.ErrNoActiveSession
	}
	now := s.clk.Now()
	lastPage := s.state.CurrentPage
	s.ledger.Record(lastPage, s.state.PageElapsed(now))
	snapshot := domain.Snapshot{
		SessionID:      s.sessionID,
		DocumentPath:   s.documentPath,
		StartedAt:      s.openedAt,
		EndedAt:        now,
		ActiveDuration: s.state.SessionElapsed(now),
		Entries:        s.ledger.Entries(),
	}
	s.state = nil
	s.ledger = nil
	return snapshot, lastPage, nil
}
