package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"folio/internal/modules/session/domain"
	sessionout "folio/internal/modules/session/port/out"
	apperrors "folio/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteHistoryStore struct {
	db *sql.DB
}

func NewSQLiteHistoryStore(dbPath string) (sessionout.HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteHistoryStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteHistoryStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  document_path TEXT NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  active_ms INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS page_durations (
  session_id TEXT NOT NULL,
  page_index INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  visit_order INTEGER NOT NULL,
  PRIMARY KEY (session_id, page_index)
);
CREATE TABLE IF NOT EXISTS positions (
  document_path TEXT PRIMARY KEY,
  page_index INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) SaveSession(ctx context.Context, snapshot domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (id, document_path, started_at, ended_at, active_ms) VALUES (?, ?, ?, ?, ?)`,
		snapshot.SessionID,
		snapshot.DocumentPath,
		snapshot.StartedAt.UTC().Format(timeLayout),
		snapshot.EndedAt.UTC().Format(timeLayout),
		snapshot.ActiveDuration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	for order, entry := range snapshot.Entries {
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO page_durations (session_id, page_index, duration_ms, visit_order) VALUES (?, ?, ?, ?)`,
			snapshot.SessionID,
			entry.PageIndex,
			entry.Duration.Milliseconds(),
			order,
		)
		if err != nil {
			return fmt.Errorf("insert page duration: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save session: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) SavePosition(ctx context.Context, documentPath string, pageIndex int) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO positions (document_path, page_index, updated_at) VALUES (?, ?, ?)
ON CONFLICT(document_path) DO UPDATE SET
  page_index=excluded.page_index,
  updated_at=excluded.updated_at;
`, documentPath, pageIndex, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) LastPosition(ctx context.Context, documentPath string) (int, error) {
	var page int
	err := s.db.QueryRowContext(ctx,
		`SELECT page_index FROM positions WHERE document_path = ?`, documentPath,
	).Scan(&page)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load position: %w", err)
	}
	return page, nil
}

func (s *SQLiteHistoryStore) PageTotals(ctx context.Context, documentPath string) ([]domain.PageDuration, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.page_index, SUM(p.duration_ms)
FROM page_durations p
JOIN sessions s ON s.id = p.session_id
WHERE s.document_path = ?
GROUP BY p.page_index
ORDER BY p.page_index;
`, documentPath)
	if err != nil {
		return nil, fmt.Errorf("query page totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []domain.PageDuration
	for rows.Next() {
		var page int
		var ms int64
		if err := rows.Scan(&page, &ms); err != nil {
			return nil, fmt.Errorf("scan page total: %w", err)
		}
		totals = append(totals, domain.PageDuration{
			PageIndex: page,
			Duration:  time.Duration(ms) * time.Millisecond,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate page totals: %w", err)
	}
	return totals, nil
}

func (s *SQLiteHistoryStore) RecentSessions(ctx context.Context, documentPath string, limit int) ([]domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, started_at, ended_at, active_ms
FROM sessions
WHERE document_path = ?
ORDER BY started_at DESC
LIMIT ?;
`, documentPath, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []domain.Snapshot
	for rows.Next() {
		var (
			id                 string
			startedAt, endedAt string
			activeMs           int64
		)
		if err := rows.Scan(&id, &startedAt, &endedAt, &activeMs); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		started, err := time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		ended, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		sessions = append(sessions, domain.Snapshot{
			SessionID:      id,
			DocumentPath:   documentPath,
			StartedAt:      started,
			EndedAt:        ended,
			ActiveDuration: time.Duration(activeMs) * time.Millisecond,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}
