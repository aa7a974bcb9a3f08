package in

import (
	"context"

	"folio/internal/modules/viewport/dto"
)

// Usecase is the viewer-facing surface of the viewport engine. One instance
// is bound to one open document; Shutdown releases it.
type Usecase interface {
	// Observe consumes a batch of visibility observations: every
	// intersecting page gets a lazy render trigger, and an election for
	// the most visible page is recorded for the debounce window.
	Observe(ctx context.Context, observations []dto.Observation)
	// Tick advances debounce and settle bookkeeping. It returns the new
	// current page and true when a matured election was propagated.
	Tick(ctx context.Context) (int, bool)
	RequestPage(ctx context.Context, pageIndex int) error
	SetScale(ctx context.Context, scale float64) error
	State(ctx context.Context) dto.ViewerState
	PageGeometry(ctx context.Context, pageIndex int) (dto.PageGeometry, error)
	PageText(ctx context.Context, pageIndex int) (dto.PageTextOutput, error)
	ExportPage(ctx context.Context, input dto.ExportPageInput) (dto.ExportPageOutput, error)
	// InvalidateAll marks every rendered page stale, forcing visible pages
	// to re-render on the next observation pass.
	InvalidateAll(ctx context.Context)
	Shutdown(ctx context.Context)
}
