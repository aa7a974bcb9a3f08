package service

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"sort"
	"sync"

	"folio/internal/modules/viewport/domain"
	out "folio/internal/modules/viewport/port/out"
	apperrors "folio/internal/platform/errors"
	"folio/internal/platform/raster"
)

// Scheduler lazily rasterizes pages onto surfaces. Rendering is
// idempotent per (page, scale), de-duplicated while in flight, and
// cancellable: a re-trigger always cancels the prior operation for that
// page before starting a new one, so a page never has two concurrent
// renders and surfaces never see out-of-order completions.
type Scheduler struct {
	mu         sync.Mutex
	doc        out.Document
	sink       out.RenderErrorSink
	pixelRatio float64
	background color.RGBA

	scale   float64
	records map[int]*renderRecord
	seq     uint64

	base      context.Context
	cancelAll context.CancelFunc
	closed    bool
}

// renderRecord is the per-page bookkeeping of raster status and in-flight
// work. The cancel func is exclusively owned: cancelled and replaced,
// never shared.
type renderRecord struct {
	status  domain.Status
	scale   float64
	surface *raster.Surface
	cancel  context.CancelFunc
	seq     uint64
}

func NewScheduler(doc out.Document, sink out.RenderErrorSink, scale, pixelRatio float64) *Scheduler {
	if scale <= 0 {
		scale = 1
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	base, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		doc:        doc,
		sink:       sink,
		pixelRatio: pixelRatio,
		background: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		scale:      scale,
		records:    make(map[int]*renderRecord),
		base:       base,
		cancelAll:  cancel,
	}
}

// EnsureRendered triggers a render of the page at the current scale unless
// one is already rendered at that scale or in flight. Fire and forget:
// completion mutates the record, failures revert it to unrendered.
func (s *Scheduler) EnsureRendered(_ context.Context, pageIndex int) {
	if pageIndex < 1 || pageIndex > s.doc.PageCount() {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	scale := s.scale
	rec := s.records[pageIndex]
	if rec == nil {
		rec = &renderRecord{status: domain.StatusUnrendered}
		s.records[pageIndex] = rec
	}
	if rec.status == domain.StatusRendering {
		s.mu.Unlock()
		return
	}
	if rec.status == domain.StatusRendered && rec.scale == scale {
		s.mu.Unlock()
		return
	}
	if rec.cancel != nil {
		rec.cancel()
		rec.cancel = nil
	}
	s.seq++
	seq := s.seq
	runCtx, cancel := context.WithCancel(s.base)
	rec.status = domain.StatusRendering
	rec.seq = seq
	rec.cancel = cancel
	s.mu.Unlock()

	go func() {
		err := s.render(runCtx, pageIndex, scale, seq)
		s.finish(pageIndex, scale, seq, err)
	}()
}

func (s *Scheduler) render(ctx context.Context, pageIndex int, scale float64, seq uint64) error {
	handle, err := s.doc.Page(ctx, pageIndex)
	if err != nil {
		return fmt.Errorf("get page %d: %w", pageIndex, err)
	}
	vp := handle.Viewport(scale)
	width := int(math.Round(float64(vp.Width) * s.pixelRatio))
	height := int(math.Round(float64(vp.Height) * s.pixelRatio))

	s.mu.Lock()
	rec := s.records[pageIndex]
	if rec == nil || rec.seq != seq {
		s.mu.Unlock()
		return apperrors.ErrRenderSuperseded
	}
	if rec.surface == nil {
		rec.surface = raster.New(width, height)
	} else {
		rec.surface.Resize(width, height)
	}
	surface := rec.surface
	s.mu.Unlock()

	surface.Clear(s.background)
	if err := handle.RenderInto(ctx, surface, domain.PageViewport{Width: width, Height: height}); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Scheduler) finish(pageIndex int, scale float64, seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[pageIndex]
	if rec == nil || rec.seq != seq {
		// A newer operation owns this record now; this completion is
		// stale and its outcome is discarded.
		return
	}
	if rec.cancel != nil {
		rec.cancel()
		rec.cancel = nil
	}
	if err == nil {
		rec.status = domain.StatusRendered
		rec.scale = scale
		return
	}
	rec.status = domain.StatusUnrendered
	if apperrors.IsCancellation(err) {
		return
	}
	if s.sink != nil {
		s.sink.RenderFailed(pageIndex, err)
	}
}

// SetScale records the new scale generation and marks every rendered page
// stale. Stale pages keep their old raster until a fresh render completes,
// triggered by the next visibility pass.
func (s *Scheduler) SetScale(scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if scale == s.scale {
		return
	}
	s.scale = scale
	for _, rec := range s.records {
		if rec.status == domain.StatusRendered {
			rec.status = domain.StatusStale
		}
	}
}

// Invalidate marks every rendered page stale without changing the scale,
// used when the document file changes underneath the viewer.
func (s *Scheduler) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.status == domain.StatusRendered {
			rec.status = domain.StatusStale
		}
	}
}

func (s *Scheduler) Scale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scale
}

// Status reports the render status tracked for a page.
func (s *Scheduler) Status(pageIndex int) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[pageIndex]
	if rec == nil {
		return domain.StatusUnrendered
	}
	return rec.status
}

// Rendered returns the sorted indices of pages with a current raster.
func (s *Scheduler) Rendered() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages := make([]int, 0, len(s.records))
	for idx, rec := range s.records {
		if rec.status == domain.StatusRendered {
			pages = append(pages, idx)
		}
	}
	sort.Ints(pages)
	return pages
}

// Shutdown cancels all in-flight operations and drops the record map.
// The scheduler accepts no further triggers afterwards.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancelAll()
	for _, rec := range s.records {
		if rec.cancel != nil {
			rec.cancel()
			rec.cancel = nil
		}
	}
	s.records = make(map[int]*renderRecord)
}
