// Package history keeps a SQLite ledger of scrape runs and what happened to
// each site in them.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/newsscrape/scraper"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Store persists run results using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the history database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// OpenReadOnly opens an existing history database for reading. Unlike
// NewStore it never creates the file or its tables.
func OpenReadOnly(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db}, nil
}

// initSchema creates the history tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS site_results (
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		site TEXT NOT NULL,
		url TEXT NOT NULL,
		status TEXT NOT NULL,
		links INTEGER NOT NULL DEFAULT 0,
		articles INTEGER NOT NULL DEFAULT 0,
		links_path TEXT,
		articles_path TEXT,
		error TEXT,
		PRIMARY KEY (run_id, position)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and all of its site results in one transaction.
func (s *Store) SaveRun(run *scraper.RunResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (run_id, started_at, finished_at) VALUES (?, ?, ?)",
		run.RunID.String(),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	query := `
		INSERT INTO site_results (
			run_id, position, site, url, status,
			links, articles, links_path, articles_path, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, site := range run.Sites {
		_, err := tx.Exec(query,
			run.RunID.String(),
			i,
			site.Site.String(),
			site.URL,
			string(site.Status),
			site.Links,
			site.Articles,
			nullString(site.LinksPath),
			nullString(site.ArticlesPath),
			nullString(site.Error),
		)
		if err != nil {
			return fmt.Errorf("failed to insert site result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRun retrieves a run and its site results by ID.
func (s *Store) GetRun(runID uuid.UUID) (*scraper.RunResult, error) {
	var startedAt, finishedAt string
	err := s.db.QueryRow(
		"SELECT started_at, finished_at FROM runs WHERE run_id = ?",
		runID.String(),
	).Scan(&startedAt, &finishedAt)

	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	run := &scraper.RunResult{
		RunID:      runID,
		StartedAt:  parseTime(startedAt),
		FinishedAt: parseTime(finishedAt),
	}

	run.Sites, err = s.siteResults(runID)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(limit int) ([]scraper.RunResult, error) {
	query := "SELECT run_id, started_at, finished_at FROM runs ORDER BY started_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []scraper.RunResult
	for rows.Next() {
		var runIDStr, startedAt, finishedAt string
		if err := rows.Scan(&runIDStr, &startedAt, &finishedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		runID, err := uuid.Parse(runIDStr)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to parse run ID: %w", err)
		}

		runs = append(runs, scraper.RunResult{
			RunID:      runID,
			StartedAt:  parseTime(startedAt),
			FinishedAt: parseTime(finishedAt),
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	rows.Close()

	// Load site results once the runs cursor is closed
	for i := range runs {
		runs[i].Sites, err = s.siteResults(runs[i].RunID)
		if err != nil {
			return nil, err
		}
	}

	return runs, nil
}

func (s *Store) siteResults(runID uuid.UUID) ([]scraper.SiteResult, error) {
	rows, err := s.db.Query(`
		SELECT site, url, status, links, articles, links_path, articles_path, error
		FROM site_results
		WHERE run_id = ?
		ORDER BY position
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query site results: %w", err)
	}
	defer rows.Close()

	results := []scraper.SiteResult{}
	for rows.Next() {
		var siteName, url, status string
		var links, articles int
		var linksPath, articlesPath, errText sql.NullString

		err := rows.Scan(&siteName, &url, &status, &links, &articles, &linksPath, &articlesPath, &errText)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site result: %w", err)
		}

		site, _ := scraper.ParseSite(siteName)
		results = append(results, scraper.SiteResult{
			Site:         site,
			URL:          url,
			Status:       scraper.Status(status),
			Links:        links,
			Articles:     articles,
			LinksPath:    linksPath.String,
			ArticlesPath: articlesPath.String,
			Error:        errText.String,
		})
	}

	return results, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// timeLayout is fixed width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Helper functions for time formatting
func formatTime(t time.Time) string {
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}
