package out

import (
	"context"

	"folio/internal/modules/session/domain"
)

// HistoryStore is the persistence collaborator: it receives the ledger
// snapshot when a session closes and hands back a starting page when a
// document reopens.
type HistoryStore interface {
	SaveSession(ctx context.Context, snapshot domain.Snapshot) error
	SavePosition(ctx context.Context, documentPath string, pageIndex int) error
	// LastPosition returns apperrors.ErrNotFound for unknown documents.
	LastPosition(ctx context.Context, documentPath string) (int, error)
	PageTotals(ctx context.Context, documentPath string) ([]domain.PageDuration, error)
	RecentSessions(ctx context.Context, documentPath string, limit int) ([]domain.Snapshot, error)
}
