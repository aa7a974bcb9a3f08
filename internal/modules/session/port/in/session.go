package in

import (
	"context"

	"folio/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	// TogglePause returns the new paused state.
	TogglePause(ctx context.Context) (bool, error)
	IsPaused(ctx context.Context) bool
	RecordPageChange(ctx context.Context, pageIndex int) error
	ElapsedSessionMs(ctx context.Context) (int64, error)
	ElapsedCurrentPageMs(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
	End(ctx context.Context) (dto.EndOutput, error)
	History(ctx context.Context, input dto.HistoryInput) (dto.HistoryOutput, error)
}
