package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"folio/internal/modules/viewport/domain"
	viewportout "folio/internal/modules/viewport/port/out"
	"folio/internal/modules/viewport/service"
	"folio/internal/platform/raster"
)

type fakePage struct {
	width  float64
	height float64

	renderErr error
	block     chan struct{} // renders wait here when non-nil

	active    int32
	maxActive int32
	renders   int32

	mu     sync.Mutex
	lastVP domain.PageViewport
}

func (p *fakePage) viewportSeen() domain.PageViewport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastVP
}

func (p *fakePage) Viewport(scale float64) domain.PageViewport {
	return domain.PageViewport{
		Width:  int(math.Round(p.width * scale)),
		Height: int(math.Round(p.height * scale)),
	}
}

func (p *fakePage) RenderInto(ctx context.Context, _ *raster.Surface, vp domain.PageViewport) error {
	p.mu.Lock()
	p.lastVP = vp
	p.mu.Unlock()
	n := atomic.AddInt32(&p.active, 1)
	defer atomic.AddInt32(&p.active, -1)
	for {
		max := atomic.LoadInt32(&p.maxActive)
		if n <= max || atomic.CompareAndSwapInt32(&p.maxActive, max, n) {
			break
		}
	}
	atomic.AddInt32(&p.renders, 1)
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.renderErr
}

type fakeDocument struct {
	mu      sync.Mutex
	pages   map[int]*fakePage
	total   int
	pageErr error
}

func newFakeDocument(total int) *fakeDocument {
	return &fakeDocument{pages: make(map[int]*fakePage), total: total}
}

func (d *fakeDocument) PageCount() int { return d.total }

func (d *fakeDocument) Page(_ context.Context, index int) (viewportout.PageHandle, error) {
	if d.pageErr != nil {
		return nil, d.pageErr
	}
	return d.page(index), nil
}

func (d *fakeDocument) page(index int) *fakePage {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pages[index]
	if !ok {
		p = &fakePage{width: 100, height: 150}
		d.pages[index] = p
	}
	return p
}

type recordingSink struct {
	mu       sync.Mutex
	failures []int
}

func (s *recordingSink) RenderFailed(pageIndex int, _ error) {
	s.mu.Lock()
	s.failures = append(s.failures, pageIndex)
	s.mu.Unlock()
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.failures)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEnsureRenderedIsIdempotentOncePageIsRendered(t *testing.T) {
	t.Parallel()
	doc := newFakeDocument(5)
	s := service.NewScheduler(doc, nil, 1.0, 1.0)
	defer s.Shutdown()

	s.EnsureRendered(context.Background(), 2)
	waitFor(t, "page 2 rendered", func() bool { return s.Status(2) == domain.StatusRendered })

	s.EnsureRendered(context.Background(), 2)
	s.EnsureRendered(context.Background(), 2)
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&doc.page(2).renders); got != 1 {
		t.Fatalf("expected exactly one render, got %d", got)
	}
}

func TestConcurrentTriggersNeverOverlapPerPage(t *testing.T) {
	t.Parallel()
	doc := newFakeDocument(3)
	page := doc.page(1)
	page.block = make(chan struct{})
	s := service.NewScheduler(doc, nil, 1.0, 1.0)
	defer s.Shutdown()

	for i := 0; i < 5; i++ {
		s.EnsureRendered(context.Background(), 1)
	}
	waitFor(t, "render in flight", func() bool { return s.Status(1) == domain.StatusRendering })
	close(page.block)
	waitFor(t, "page 1 rendered", func() bool { return s.Status(1) == domain.StatusRendered })

	if got := atomic.LoadInt32(&page.maxActive); got != 1 {
		t.Fatalf("expected at most one in-flight render, saw %d", got)
	}
	if got := atomic.LoadInt32(&page.renders); got != 1 {
		t.Fatalf("expected one render, got %d", got)
	}
}

func TestSetScaleMarksRenderedPagesStaleAndReRenders(t *testing.T) {
	t.Parallel()
	doc := newFakeDocument(4)
	s := service.NewScheduler(doc, nil, 1.0, 1.0)
	defer s.Shutdown()

	s.EnsureRendered(context.Background(), 1)
	s.EnsureRendered(context.Background(), 2)
	waitFor(t, "pages rendered", func() bool {
		return s.Status(1) == domain.StatusRendered && s.Status(2) == domain.StatusRendered
	})

	s.SetScale(2.0)
	if s.Status(1) != domain.StatusStale || s.Status(2) != domain.StatusStale {
		t.Fatalf("expected stale records after scale change, got %v and %v", s.Status(1), s.Status(2))
	}
	if len(s.Rendered()) != 0 {
		t.Fatalf("stale pages must not count as rendered: %v", s.Rendered())
	}

	// Only the page the viewer still sees gets re-triggered.
	s.EnsureRendered(context.Background(), 1)
	waitFor(t, "page 1 re-rendered", func() bool { return s.Status(1) == domain.StatusRendered })
	if got := atomic.LoadInt32(&doc.page(1).renders); got != 2 {
		t.Fatalf("expected page 1 rendered twice, got %d", got)
	}
	if s.Status(2) != domain.StatusStale {
		t.Fatalf("non-visible page must stay stale, got %v", s.Status(2))
	}
}

func TestRenderFailureRevertsToUnrenderedAndRetries(t *testing.T) {
	t.Parallel()
	doc := newFakeDocument(2)
	page := doc.page(1)
	page.renderErr = errors.New("decode failed")
	sink := &recordingSink{}
	s := service.NewScheduler(doc, sink, 1.0, 1.0)
	defer s.Shutdown()

	s.EnsureRendered(context.Background(), 1)
	waitFor(t, "failure reported", func() bool { return sink.count() == 1 })
	if s.Status(1) != domain.StatusUnrendered {
		t.Fatalf("failed render must revert to unrendered, got %v", s.Status(1))
	}

	// The next visibility pass retries.
	page.renderErr = nil
	s.EnsureRendered(context.Background(), 1)
	waitFor(t, "retry rendered", func() bool { return s.Status(1) == domain.StatusRendered })
	if got := atomic.LoadInt32(&page.renders); got != 2 {
		t.Fatalf("expected 2 render attempts, got %d", got)
	}
}

func TestShutdownCancelsInFlightWithoutReportingErrors(t *testing.T) {
	t.Parallel()
	doc := newFakeDocument(2)
	page := doc.page(1)
	page.block = make(chan struct{})
	sink := &recordingSink{}
	s := service.NewScheduler(doc, sink, 1.0, 1.0)

	s.EnsureRendered(context.Background(), 1)
	waitFor(t, "render in flight", func() bool { return atomic.LoadInt32(&page.active) == 1 })

	s.Shutdown()
	waitFor(t, "render unwound", func() bool { return atomic.LoadInt32(&page.active) == 0 })
	time.Sleep(10 * time.Millisecond)
	if sink.count() != 0 {
		t.Fatalf("cancellation must not reach the error sink, got %d failures", sink.count())
	}
	// Triggers after shutdown are ignored.
	s.EnsureRendered(context.Background(), 2)
	time.Sleep(10 * time.Millisecond)
	if s.Status(2) != domain.StatusUnrendered {
		t.Fatalf("scheduler must stay inert after shutdown")
	}
}

func TestDocumentAccessFailureIsContainedToOnePage(t *testing.T) {
	t.Parallel()
	doc := newFakeDocument(3)
	sink := &recordingSink{}
	s := service.NewScheduler(doc, sink, 1.0, 1.0)
	defer s.Shutdown()

	s.EnsureRendered(context.Background(), 1)
	waitFor(t, "page 1 rendered", func() bool { return s.Status(1) == domain.StatusRendered })

	doc.pageErr = errors.New("document access failed")
	s.EnsureRendered(context.Background(), 2)
	waitFor(t, "failure reported", func() bool { return sink.count() == 1 })
	if s.Status(2) != domain.StatusUnrendered {
		t.Fatalf("failed page must revert, got %v", s.Status(2))
	}
	if s.Status(1) != domain.StatusRendered {
		t.Fatalf("other pages' records must stay intact, got %v", s.Status(1))
	}
}

func TestPixelRatioScalesSurfaceDimensions(t *testing.T) {
	t.Parallel()
	doc := newFakeDocument(1)
	s := service.NewScheduler(doc, nil, 1.0, 2.0)
	defer s.Shutdown()

	s.EnsureRendered(context.Background(), 1)
	waitFor(t, "page rendered", func() bool { return s.Status(1) == domain.StatusRendered })
	// 100x150 at scale 1 with pixel ratio 2 rasterizes at 200x300.
	if vp := doc.page(1).viewportSeen(); vp.Width != 200 || vp.Height != 300 {
		t.Fatalf("surface viewport = %dx%d, want 200x300", vp.Width, vp.Height)
	}
}
