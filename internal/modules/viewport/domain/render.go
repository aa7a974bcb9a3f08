package domain

// Status is the raster state of one page's render record.
type Status int

const (
	StatusUnrendered Status = iota
	StatusRendering
	StatusRendered
	// StatusStale marks a page rendered at an outdated scale. The old
	// raster stays displayable until a fresh render completes.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusUnrendered:
		return "unrendered"
	case StatusRendering:
		return "rendering"
	case StatusRendered:
		return "rendered"
	case StatusStale:
		return "stale"
	default:
		return "unknown"
	}
}

// PageViewport is the drawable geometry of a page at a given scale.
type PageViewport struct {
	Width  int
	Height int
}
