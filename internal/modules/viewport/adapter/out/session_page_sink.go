package out

import (
	"context"

	sessionin "folio/internal/modules/session/port/in"
	viewportout "folio/internal/modules/viewport/port/out"
)

// SessionPageSink feeds elected page changes into the session clock.
type SessionPageSink struct {
	session sessionin.Usecase
}

func NewSessionPageSink(session sessionin.Usecase) viewportout.PageChangeSink {
	return &SessionPageSink{session: session}
}

func (s *SessionPageSink) PageChanged(ctx context.Context, pageIndex int) {
	// Best-effort: a viewer without an active session keeps working.
	_ = s.session.RecordPageChange(ctx, pageIndex)
}
