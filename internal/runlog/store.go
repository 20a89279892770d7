// Package runlog persists one bookkeeping row per resolved organization so
// later runs can tell first sightings from re-resolutions.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/civicseek/orgjobs/internal/engine/resolve"
)

// Store is the SQLite-backed run log. A nil *Store is a no-op: resolution
// works identically with bookkeeping disabled.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the run-log database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS resolutions (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		org_name       TEXT NOT NULL,
		org_type       TEXT NOT NULL,
		homepage       TEXT,
		homepage_via   TEXT,
		jobs_url       TEXT,
		jobs_url_via   TEXT,
		source_type    TEXT,
		adapter_id     TEXT,
		confidence     REAL NOT NULL DEFAULT 0,
		needs_review   INTEGER NOT NULL DEFAULT 0,
		notes          TEXT,
		resolved_at    TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: init schema: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_resolutions_org ON resolutions(org_name)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: init index: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends one resolution row.
func (s *Store) Record(ctx context.Context, org resolve.Org, out resolve.OrgResolution) error {
	if s == nil {
		return nil
	}
	notes := out.JobsURL.Notes
	if out.ReviewReason != "" {
		notes = out.ReviewReason
	}
	needsReview := 0
	if out.NeedsReview {
		needsReview = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resolutions
			(org_name, org_type, homepage, homepage_via, jobs_url, jobs_url_via,
			 source_type, adapter_id, confidence, needs_review, notes, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		org.Name, string(org.Type),
		out.Homepage.URL, string(out.Homepage.DiscoveredVia),
		out.JobsURL.URL, string(out.JobsURL.DiscoveredVia),
		string(out.Classification.SourceType), out.Classification.AdapterID,
		out.Classification.Confidence, needsReview, notes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("runlog: insert: %w", err)
	}
	return nil
}

// PreviouslySeen reports whether the organization already has a row with a
// resolved jobs URL from an earlier run.
func (s *Store) PreviouslySeen(ctx context.Context, orgName string) (bool, error) {
	if s == nil {
		return false, nil
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM resolutions WHERE org_name = ? AND jobs_url <> ''`,
		orgName,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("runlog: lookup: %w", err)
	}
	return n > 0, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
