package out

import (
	"fmt"
	"os"

	viewportout "folio/internal/modules/viewport/port/out"
)

// StderrRenderSink reports unexpected render failures to stderr. The
// failing page reverts to unrendered and retries on the next visibility
// pass, so nothing else needs to happen here.
type StderrRenderSink struct{}

func NewStderrRenderSink() viewportout.RenderErrorSink {
	return StderrRenderSink{}
}

func (StderrRenderSink) RenderFailed(pageIndex int, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "folio: render page %d: %v\n", pageIndex, err)
}
