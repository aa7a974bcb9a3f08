package usecase

import (
	"context"
	"errors"
	"fmt"

	"folio/internal/modules/session/dto"
	sessionin "folio/internal/modules/session/port/in"
	sessionout "folio/internal/modules/session/port/out"
	"folio/internal/modules/session/service"
	apperrors "folio/internal/platform/errors"
)

type Interactor struct {
	svc   *service.SessionService
	store sessionout.HistoryStore
}

func NewInteractor(svc *service.SessionService, store sessionout.HistoryStore) sessionin.Usecase {
	return &Interactor{svc: svc, store: store}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error) {
	if input.DocumentPath == "" {
		return dto.StartOutput{}, fmt.Errorf("%w: document path is required", apperrors.ErrInvalidInput)
	}
	page := input.PageIndex
	if page < 1 {
		page = 1
		if i.store != nil {
			last, err := i.store.LastPosition(ctx, input.DocumentPath)
			if err == nil && last >= 1 {
				page = last
			} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return dto.StartOutput{}, err
			}
		}
	}
	sessionID, startedAt := i.svc.Start(input.DocumentPath, page)
	return dto.StartOutput{SessionID: sessionID, PageIndex: page, StartedAt: startedAt}, nil
}

func (i *Interactor) TogglePause(_ context.Context) (bool, error) {
	return i.svc.TogglePause()
}

func (i *Interactor) IsPaused(_ context.Context) bool {
	return i.svc.Paused()
}

func (i *Interactor) RecordPageChange(_ context.Context, pageIndex int) error {
	if pageIndex < 1 {
		return fmt.Errorf("%w: page %d", apperrors.ErrInvalidInput, pageIndex)
	}
	return i.svc.RecordPageChange(pageIndex)
}

func (i *Interactor) ElapsedSessionMs(_ context.Context) (int64, error) {
	d, err := i.svc.SessionElapsed()
	if err != nil {
		return 0, err
	}
	return d.Milliseconds(), nil
}

func (i *Interactor) ElapsedCurrentPageMs(_ context.Context) (int64, error) {
	d, err := i.svc.PageElapsed()
	if err != nil {
		return 0, err
	}
	return d.Milliseconds(), nil
}

func (i *Interactor) Stats(_ context.Context) (dto.StatsOutput, error) {
	page, paused, sessionElapsed, pageElapsed, ledger, err := i.svc.Stats()
	if err != nil {
		return dto.StatsOutput{}, err
	}
	out := dto.StatsOutput{
		CurrentPage:       page,
		Paused:            paused,
		SessionMs:         sessionElapsed.Milliseconds(),
		PageMs:            pageElapsed.Milliseconds(),
		DistinctPagesRead: ledger.DistinctPages(),
		TotalMs:           ledger.Total().Milliseconds(),
		AverageMs:         ledger.AveragePerPage().Milliseconds(),
	}
	for _, e := range ledger.Entries() {
		out.Entries = append(out.Entries, dto.PageDurationOutput{
			PageIndex:  e.PageIndex,
			DurationMs: e.Duration.Milliseconds(),
		})
	}
	return out, nil
}

// End closes the session and hands the ledger snapshot plus the reading
// position to the persistence collaborator.
func (i *Interactor) End(ctx context.Context) (dto.EndOutput, error) {
	snapshot, lastPage, err := i.svc.End()
	if err != nil {
		return dto.EndOutput{}, err
	}
	if i.store != nil {
		if err := i.store.SaveSession(ctx, snapshot); err != nil {
			return dto.EndOutput{}, err
		}
		if err := i.store.SavePosition(ctx, snapshot.DocumentPath, lastPage); err != nil {
			return dto.EndOutput{}, err
		}
	}
	return dto.EndOutput{
		SessionID:  snapshot.SessionID,
		DurationMs: snapshot.ActiveDuration.Milliseconds(),
		PagesRead:  len(snapshot.Entries),
	}, nil
}

func (i *Interactor) History(ctx context.Context, input dto.HistoryInput) (dto.HistoryOutput, error) {
	if i.store == nil {
		return dto.HistoryOutput{}, fmt.Errorf("history store is not configured")
	}
	if input.DocumentPath == "" {
		return dto.HistoryOutput{}, fmt.Errorf("%w: document path is required", apperrors.ErrInvalidInput)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	totals, err := i.store.PageTotals(ctx, input.DocumentPath)
	if err != nil {
		return dto.HistoryOutput{}, err
	}
	sessions, err := i.store.RecentSessions(ctx, input.DocumentPath, limit)
	if err != nil {
		return dto.HistoryOutput{}, err
	}
	out := dto.HistoryOutput{}
	for _, e := range totals {
		out.Totals = append(out.Totals, dto.PageDurationOutput{
			PageIndex:  e.PageIndex,
			DurationMs: e.Duration.Milliseconds(),
		})
	}
	for _, s := range sessions {
		out.Sessions = append(out.Sessions, dto.SessionOutput{
			SessionID:  s.SessionID,
			StartedAt:  s.StartedAt,
			EndedAt:    s.EndedAt,
			DurationMs: s.ActiveDuration.Milliseconds(),
		})
	}
	return out, nil
}
