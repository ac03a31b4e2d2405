package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sitegraph/sitegraph/internal/model"
)

// HistoryDB provides SQLite-based storage for fetch history and run
// summaries.
//
// Design decision: We use a single database file for all domains rather
// than one file per domain. The JSON graph stores are already
// per-domain; the history database exists to answer cross-run questions
// ("when did this page last change?", "which domains have I crawled?"),
// which a single file answers with plain queries.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created; if false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "sitegraph.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY errors during the serial walk.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Fetch records store the latest fetch of each page per domain
	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		key TEXT NOT NULL,
		url TEXT NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		hash TEXT,
		strategy TEXT,
		UNIQUE(domain, key)
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_domain ON fetches(domain);
	CREATE INDEX IF NOT EXISTS idx_fetches_fetched_at ON fetches(fetched_at);

	-- Run records store one row per crawl run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		known_nodes INTEGER,
		pages_fetched INTEGER,
		discovered INTEGER,
		interrupted INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(domain);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// FetchRecord represents a stored page fetch.
type FetchRecord struct {
	ID          int64
	Domain      string
	Key         string
	URL         string
	FetchedAt   time.Time
	StatusCode  int
	ContentType string
	Title       string
	Hash        string
	Strategy    string
}

// RecordFetch inserts or updates the fetch record for one page.
// Uses UPSERT so each (domain, key) pair keeps only its latest fetch.
func (hdb *HistoryDB) RecordFetch(ctx context.Context, domain string, page *model.Page) error {
	query := `
	INSERT INTO fetches (domain, key, url, status_code, content_type, title, hash, strategy)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(domain, key) DO UPDATE SET
		url = excluded.url,
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		title = excluded.title,
		hash = excluded.hash,
		strategy = excluded.strategy,
		fetched_at = CURRENT_TIMESTAMP
	`

	_, err := hdb.db.ExecContext(ctx, query,
		domain,
		page.Key,
		page.URL,
		page.StatusCode,
		page.ContentType,
		page.Title,
		page.Hash,
		page.Strategy,
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}

// RecentFetches returns the most recently fetched pages for a domain,
// newest first. A limit of 0 means no limit.
func (hdb *HistoryDB) RecentFetches(ctx context.Context, domain string, limit int) ([]FetchRecord, error) {
	query := `
	SELECT id, domain, key, url, fetched_at, status_code, content_type, title, hash, strategy
	FROM fetches
	WHERE domain = ?
	ORDER BY fetched_at DESC, key ASC
	`
	args := []any{domain}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetches: %w", err)
	}
	defer rows.Close()

	var results []FetchRecord
	for rows.Next() {
		var rec FetchRecord
		var fetchedAt string

		err := rows.Scan(
			&rec.ID,
			&rec.Domain,
			&rec.Key,
			&rec.URL,
			&fetchedAt,
			&rec.StatusCode,
			&rec.ContentType,
			&rec.Title,
			&rec.Hash,
			&rec.Strategy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch record: %w", err)
		}

		rec.FetchedAt = parseTimestamp(fetchedAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// GetFetch retrieves the fetch record for one page, or nil when the
// page was never fetched.
func (hdb *HistoryDB) GetFetch(ctx context.Context, domain, key string) (*FetchRecord, error) {
	query := `
	SELECT id, domain, key, url, fetched_at, status_code, content_type, title, hash, strategy
	FROM fetches
	WHERE domain = ? AND key = ?
	`

	var rec FetchRecord
	var fetchedAt string

	err := hdb.db.QueryRowContext(ctx, query, domain, key).Scan(
		&rec.ID,
		&rec.Domain,
		&rec.Key,
		&rec.URL,
		&fetchedAt,
		&rec.StatusCode,
		&rec.ContentType,
		&rec.Title,
		&rec.Hash,
		&rec.Strategy,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fetch record: %w", err)
	}

	rec.FetchedAt = parseTimestamp(fetchedAt)
	return &rec, nil
}

// Domains returns every domain with recorded fetches, sorted.
func (hdb *HistoryDB) Domains(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT domain FROM fetches
	ORDER BY domain
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// RunRecord represents one stored crawl run.
type RunRecord struct {
	ID           int64
	Domain       string
	StartedAt    time.Time
	FinishedAt   time.Time
	KnownNodes   int
	PagesFetched int
	Discovered   int
	Interrupted  bool
}

// RecordRun stores the summary of a finished crawl run.
func (hdb *HistoryDB) RecordRun(ctx context.Context, summary *model.Summary) error {
	query := `
	INSERT INTO runs (domain, started_at, finished_at, known_nodes, pages_fetched, discovered, interrupted)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := hdb.db.ExecContext(ctx, query,
		summary.Domain,
		summary.StartedAt.UTC().Format(time.RFC3339),
		summary.FinishedAt.UTC().Format(time.RFC3339),
		summary.KnownNodes,
		summary.PagesFetched,
		summary.Discovered,
		summary.Interrupted,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RunHistory returns past runs for a domain, newest first. A limit of
// 0 means no limit.
func (hdb *HistoryDB) RunHistory(ctx context.Context, domain string, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, domain, started_at, finished_at, known_nodes, pages_fetched, discovered, interrupted
	FROM runs
	WHERE domain = ?
	ORDER BY started_at DESC
	`
	args := []any{domain}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedAt, finishedAt string

		err := rows.Scan(
			&rec.ID,
			&rec.Domain,
			&startedAt,
			&finishedAt,
			&rec.KnownNodes,
			&rec.PagesFetched,
			&rec.Discovered,
			&rec.Interrupted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}

		rec.StartedAt = parseTimestamp(startedAt)
		rec.FinishedAt = parseTimestamp(finishedAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may
// return. The order matters: more specific formats come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different forms depending on
// configuration; if none match, the zero time is returned.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
