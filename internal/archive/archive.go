package archive

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/crawlpage/crawlpage/internal/model"
)

// FileName is the archive database file name inside the state directory.
const FileName = "crawlpage.db"

// Archive stores crawl history in SQLite.
//
// Design decision: One database file for all origins rather than one per
// origin. Cross-origin queries stay trivial and there is only one file to
// back up; the origin column partitions the data.
type Archive struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the archive database under dir.
func Open(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	dbPath := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	// SQLite supports a single writer; the crawl loop is sequential per
	// origin anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	a := &Archive{db: db, dbPath: dbPath}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if err := a.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archive tables: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// createTables creates the archive schema if it doesn't exist.
func (a *Archive) createTables() error {
	schema := `
	-- One row per successfully processed page fetch.
	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		origin TEXT NOT NULL,
		page_index INTEGER NOT NULL,
		url TEXT NOT NULL,
		status_code INTEGER,
		record_count INTEGER NOT NULL,
		body_hash TEXT,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(origin, page_index)
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_origin ON fetches(origin);
	CREATE INDEX IF NOT EXISTS idx_fetches_fetched_at ON fetches(fetched_at);

	-- Extracted records, flattened to JSON per row.
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		origin TEXT NOT NULL,
		page_index INTEGER NOT NULL,
		position INTEGER NOT NULL,
		fields TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_origin ON records(origin);
	CREATE INDEX IF NOT EXISTS idx_records_page ON records(origin, page_index);
	`
	_, err := a.db.ExecContext(context.Background(), schema)
	return err
}

// PageFetch is one archived page fetch.
type PageFetch struct {
	ID          int64
	Origin      string
	PageIndex   int
	URL         string
	StatusCode  int
	RecordCount int
	BodyHash    string
	FetchedAt   time.Time
}

// SavePage archives a processed page and its records in one transaction.
// Re-archiving the same page replaces the fetch row and its records, so a
// resumed run that re-processes an in-flight page never duplicates rows.
func (a *Archive) SavePage(ctx context.Context, addr model.PageAddress, statusCode int, body []byte, records []model.Record) error {
	sum := sha256.Sum256(body)
	bodyHash := hex.EncodeToString(sum[:])

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	_, err = tx.ExecContext(ctx, `
	INSERT INTO fetches (origin, page_index, url, status_code, record_count, body_hash)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(origin, page_index) DO UPDATE SET
		url = excluded.url,
		status_code = excluded.status_code,
		record_count = excluded.record_count,
		body_hash = excluded.body_hash,
		fetched_at = CURRENT_TIMESTAMP
	`, addr.Origin, addr.Index, addr.URL, statusCode, len(records), bodyHash)
	if err != nil {
		return fmt.Errorf("insert fetch row: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE origin = ? AND page_index = ?`,
		addr.Origin, addr.Index,
	); err != nil {
		return fmt.Errorf("clear page records: %w", err)
	}

	for i, record := range records {
		fields, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("serialize record %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO records (origin, page_index, position, fields)
		VALUES (?, ?, ?, ?)
		`, addr.Origin, addr.Index, i, string(fields)); err != nil {
			return fmt.Errorf("insert record row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive transaction: %w", err)
	}
	return nil
}

// History returns the archived fetches for an origin, newest first.
func (a *Archive) History(ctx context.Context, origin string) ([]PageFetch, error) {
	rows, err := a.db.QueryContext(ctx, `
	SELECT id, origin, page_index, url, status_code, record_count, body_hash, fetched_at
	FROM fetches
	WHERE origin = ?
	ORDER BY fetched_at DESC, page_index DESC
	`, origin)
	if err != nil {
		return nil, fmt.Errorf("query fetch history: %w", err)
	}
	defer rows.Close()

	var results []PageFetch
	for rows.Next() {
		var f PageFetch
		var fetchedAt string
		if err := rows.Scan(&f.ID, &f.Origin, &f.PageIndex, &f.URL, &f.StatusCode, &f.RecordCount, &f.BodyHash, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan fetch row: %w", err)
		}
		f.FetchedAt = parseTimestamp(fetchedAt)
		results = append(results, f)
	}
	return results, rows.Err()
}

// Records returns the archived records for an origin in page and document
// order.
func (a *Archive) Records(ctx context.Context, origin string) ([]model.Record, error) {
	rows, err := a.db.QueryContext(ctx, `
	SELECT fields FROM records
	WHERE origin = ?
	ORDER BY page_index ASC, position ASC
	`, origin)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var results []model.Record
	for rows.Next() {
		var fields string
		if err := rows.Scan(&fields); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		var record model.Record
		if err := json.Unmarshal([]byte(fields), &record); err != nil {
			continue // Skip malformed rows
		}
		results = append(results, record)
	}
	return results, rows.Err()
}

// RecordCount returns the number of archived records for an origin.
func (a *Archive) RecordCount(ctx context.Context, origin string) (int, error) {
	var count int
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE origin = ?`, origin,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// timestampFormats contains the timestamp formats SQLite may return.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp parses a SQLite timestamp, returning zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
