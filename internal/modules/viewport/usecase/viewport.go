package usecase

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"sync"

	"folio/internal/modules/viewport/domain"
	"folio/internal/modules/viewport/dto"
	viewportin "folio/internal/modules/viewport/port/in"
	out "folio/internal/modules/viewport/port/out"
	"folio/internal/modules/viewport/service"
	"folio/internal/platform/clock"
	apperrors "folio/internal/platform/errors"
	"folio/internal/platform/raster"
)

// Interactor owns the externally visible current page and wires the
// scheduler, tracker and navigator into one viewer engine bound to a
// single open document.
type Interactor struct {
	clk      clock.Clock
	doc      out.Document
	texter   out.PageTexter
	sched    *service.Scheduler
	tracker  *service.Tracker
	nav      *service.Navigator
	pageSink out.PageChangeSink

	mu      sync.Mutex
	current int
}

func NewInteractor(
	clk clock.Clock,
	doc out.Document,
	sched *service.Scheduler,
	tracker *service.Tracker,
	nav *service.Navigator,
	pageSink out.PageChangeSink,
) viewportin.Usecase {
	texter, _ := doc.(out.PageTexter)
	return &Interactor{
		clk:      clk,
		doc:      doc,
		texter:   texter,
		sched:    sched,
		tracker:  tracker,
		nav:      nav,
		pageSink: pageSink,
		current:  1,
	}
}

func (i *Interactor) Observe(ctx context.Context, observations []dto.Observation) {
	batch := make([]domain.Observation, 0, len(observations))
	for _, o := range observations {
		if o.Intersecting {
			i.sched.EnsureRendered(ctx, o.PageIndex)
		}
		batch = append(batch, domain.Observation{
			PageIndex:    o.PageIndex,
			Ratio:        o.Ratio,
			Intersecting: o.Intersecting,
		})
	}
	elected, ok := domain.Elect(batch)
	now := i.clk.Now()
	i.mu.Lock()
	i.tracker.Observe(now, elected, ok)
	i.mu.Unlock()
}

func (i *Interactor) Tick(ctx context.Context) (int, bool) {
	now := i.clk.Now()
	i.mu.Lock()
	if i.nav.Locked(now) {
		// Elections stay recorded but are not propagated while a
		// programmatic scroll settles.
		current := i.current
		i.mu.Unlock()
		return current, false
	}
	page, ok := i.tracker.Matured(now, i.current)
	if ok {
		i.current = page
	}
	current := i.current
	i.mu.Unlock()
	if ok && i.pageSink != nil {
		i.pageSink.PageChanged(ctx, page)
	}
	return current, ok
}

func (i *Interactor) RequestPage(ctx context.Context, pageIndex int) error {
	if pageIndex < 1 || pageIndex > i.doc.PageCount() {
		return fmt.Errorf("%w: page %d of %d", apperrors.ErrInvalidInput, pageIndex, i.doc.PageCount())
	}
	now := i.clk.Now()
	i.mu.Lock()
	if pageIndex == i.current {
		i.mu.Unlock()
		return nil
	}
	// Lock, scroll and optimistic publish happen under one critical
	// section so no stale election can slip in between.
	i.nav.Request(now, pageIndex)
	i.tracker.Reset()
	i.current = pageIndex
	i.mu.Unlock()
	if i.pageSink != nil {
		i.pageSink.PageChanged(ctx, pageIndex)
	}
	return nil
}

func (i *Interactor) SetScale(_ context.Context, scale float64) error {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: scale %v", apperrors.ErrInvalidInput, scale)
	}
	i.sched.SetScale(scale)
	return nil
}

func (i *Interactor) State(_ context.Context) dto.ViewerState {
	now := i.clk.Now()
	i.mu.Lock()
	current := i.current
	locked := i.nav.Locked(now)
	i.mu.Unlock()
	return dto.ViewerState{
		CurrentPage:   current,
		PageCount:     i.doc.PageCount(),
		Scale:         i.sched.Scale(),
		RenderedPages: i.sched.Rendered(),
		NavLocked:     locked,
	}
}

func (i *Interactor) PageGeometry(ctx context.Context, pageIndex int) (dto.PageGeometry, error) {
	handle, err := i.page(ctx, pageIndex)
	if err != nil {
		return dto.PageGeometry{}, err
	}
	vp := handle.Viewport(i.sched.Scale())
	return dto.PageGeometry{PageIndex: pageIndex, Width: vp.Width, Height: vp.Height}, nil
}

func (i *Interactor) PageText(ctx context.Context, pageIndex int) (dto.PageTextOutput, error) {
	if pageIndex < 1 || pageIndex > i.doc.PageCount() {
		return dto.PageTextOutput{}, fmt.Errorf("%w: page %d", apperrors.ErrInvalidInput, pageIndex)
	}
	if i.texter == nil {
		return dto.PageTextOutput{}, fmt.Errorf("%w: document has no text rendition", apperrors.ErrPageUnavailable)
	}
	text, err := i.texter.PageText(ctx, pageIndex)
	if err != nil {
		return dto.PageTextOutput{}, err
	}
	return dto.PageTextOutput{PageIndex: pageIndex, Text: text}, nil
}

// ExportPage renders one page synchronously onto a fresh surface, outside
// the scheduler's lazy pipeline.
func (i *Interactor) ExportPage(ctx context.Context, input dto.ExportPageInput) (dto.ExportPageOutput, error) {
	scale := input.Scale
	if scale <= 0 {
		scale = i.sched.Scale()
	}
	handle, err := i.page(ctx, input.PageIndex)
	if err != nil {
		return dto.ExportPageOutput{}, err
	}
	vp := handle.Viewport(scale)
	surface := raster.New(vp.Width, vp.Height)
	surface.Clear(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	if err := handle.RenderInto(ctx, surface, vp); err != nil {
		return dto.ExportPageOutput{}, fmt.Errorf("render page %d: %w", input.PageIndex, err)
	}
	return dto.ExportPageOutput{PageIndex: input.PageIndex, Image: surface.Image()}, nil
}

func (i *Interactor) InvalidateAll(_ context.Context) {
	i.sched.Invalidate()
}

func (i *Interactor) Shutdown(_ context.Context) {
	i.sched.Shutdown()
}

func (i *Interactor) page(ctx context.Context, pageIndex int) (out.PageHandle, error) {
	if pageIndex < 1 || pageIndex > i.doc.PageCount() {
		return nil, fmt.Errorf("%w: page %d of %d", apperrors.ErrInvalidInput, pageIndex, i.doc.PageCount())
	}
	handle, err := i.doc.Page(ctx, pageIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPageUnavailable, err)
	}
	return handle, nil
}
