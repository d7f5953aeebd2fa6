// Package history persists per-file import outcomes to sqlite so runs can
// be audited after the fact.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one terminal outcome for one file.
type Record struct {
	ID          int64
	Path        string
	Category    string
	Destination string
	Status      string // imported | failed | skipped
	Reason      string
	Trigger     string // created | modified | manual | batch
	Duration    time.Duration
	ImportedAt  time.Time
}

const (
	StatusImported = "imported"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS imports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL,
    category TEXT NOT NULL,
    destination TEXT,
    status TEXT NOT NULL,
    reason TEXT,
    trigger_kind TEXT,
    duration_ms INTEGER,
    imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_imports_path ON imports(path);
CREATE INDEX IF NOT EXISTS idx_imports_status ON imports(status);
CREATE INDEX IF NOT EXISTS idx_imports_category ON imports(category);
`

const schemaVersion = 1

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, err
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	_, _ = s.db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, schemaVersion)
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Append(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	importedAt := record.ImportedAt
	if importedAt.IsZero() {
		importedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO imports (path, category, destination, status, reason, trigger_kind, duration_ms, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, record.Path, record.Category, record.Destination, record.Status,
		record.Reason, record.Trigger, record.Duration.Milliseconds(), importedAt)

	if err != nil {
		return fmt.Errorf("append import record: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (s *Store) Recent(limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, path, category, destination, status, reason, trigger_kind, duration_ms, imported_at
		FROM imports
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var destination, reason, trigger sql.NullString
		var durationMS sql.NullInt64
		var importedAt sql.NullTime

		if err := rows.Scan(&record.ID, &record.Path, &record.Category, &destination,
			&record.Status, &reason, &trigger, &durationMS, &importedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		record.Destination = destination.String
		record.Reason = reason.String
		record.Trigger = trigger.String
		record.Duration = time.Duration(durationMS.Int64) * time.Millisecond
		if importedAt.Valid {
			record.ImportedAt = importedAt.Time
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

// CountByStatus aggregates record counts per terminal status.
func (s *Store) CountByStatus() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM imports GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan history count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
