package out

import (
	"context"

	"folio/internal/modules/viewport/domain"
	"folio/internal/platform/raster"
)

// Document is the external handle this engine consumes. It decides neither
// what pages exist nor how they decode; it only hands out page handles.
type Document interface {
	PageCount() int
	Page(ctx context.Context, index int) (PageHandle, error)
}

// PageHandle exposes one page's drawable geometry and render operation.
// RenderInto must honor ctx cancellation and return a context.Canceled
// class error when cancelled mid-render.
type PageHandle interface {
	Viewport(scale float64) domain.PageViewport
	RenderInto(ctx context.Context, surface *raster.Surface, viewport domain.PageViewport) error
}

// PageTexter is an optional capability of documents that can produce a
// plain-text rendition of a page for terminal display.
type PageTexter interface {
	PageText(ctx context.Context, index int) (string, error)
}

// Scroller receives programmatic scroll-into-view requests issued by the
// navigator. Implementations are presentational and out of this core.
type Scroller interface {
	ScrollTo(pageIndex int)
}

// PageChangeSink is notified whenever the externally visible current page
// changes, organically or through a programmatic request.
type PageChangeSink interface {
	PageChanged(ctx context.Context, pageIndex int)
}

// RenderErrorSink receives unexpected render failures. Expected
// cancellations never reach the sink.
type RenderErrorSink interface {
	RenderFailed(pageIndex int, err error)
}

// ChangeWatcher reports external modifications to the open document so the
// viewer can invalidate its rasters.
type ChangeWatcher interface {
	Changes() <-chan struct{}
	Close() error
}
