package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.BrewLog = (*HistoryDB)(nil)

const historySchema = `
CREATE TABLE IF NOT EXISTS brews (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id   TEXT NOT NULL,
	volume_ml    REAL NOT NULL,
	strong       INTEGER NOT NULL,
	dose_g       REAL NOT NULL,
	status       TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	finished_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_brews_finished ON brews(finished_at);
`

// HistoryDB is the SQLite-backed brew log.
type HistoryDB struct {
	path string
	db   *sql.DB
	log  *logger.Logger
}

// OpenHistory opens or creates the history database at path.
func OpenHistory(path string, log *logger.Logger) (*HistoryDB, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve history db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// One writer is plenty and keeps sqlite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	log.Debug("history db opened at %s", absPath)
	return &HistoryDB{path: absPath, db: db, log: log}, nil
}

// Path returns the absolute database path.
func (h *HistoryDB) Path() string { return h.path }

// Close closes the database.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Record appends a finished brew.
func (h *HistoryDB) Record(ctx context.Context, e domain.HistoryEntry) error {
	strong := 0
	if e.Strong {
		strong = 1
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO brews (session_id, volume_ml, strong, dose_g, status, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.TotalVolumeML, strong, e.DoseGrams, e.Status.String(),
		e.StartedAt.UTC().Format(time.RFC3339Nano), e.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record brew %s: %w", e.SessionID, err)
	}
	h.log.Debug("recorded brew %s (%s)", e.SessionID, e.Status)
	return nil
}

// Recent returns up to limit entries, newest first.
func (h *HistoryDB) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT session_id, volume_ml, strong, dose_g, status, started_at, finished_at
		 FROM brews ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var (
			e                 domain.HistoryEntry
			strong            int
			status            string
			started, finished string
		)
		if err := rows.Scan(&e.SessionID, &e.TotalVolumeML, &strong, &e.DoseGrams, &status, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Strong = strong == 1
		e.Status = domain.ParseSessionStatus(status)
		e.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		e.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}
