package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobsearch/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS seen_jobs (
	job_key    TEXT PRIMARY KEY,
	first_seen INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS search_runs (
	id          TEXT PRIMARY KEY,
	started_at  INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	query       TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	skills      TEXT NOT NULL DEFAULT '[]',
	collected   INTEGER NOT NULL,
	returned    INTEGER NOT NULL,
	scored      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS provider_stats (
	run_id        TEXT NOT NULL REFERENCES search_runs(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	name          TEXT NOT NULL,
	job_count     INTEGER NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_search_runs_started ON search_runs(started_at);`

// SQLiteStore keeps watch-mode seen keys and search run diagnostics in a
// single SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and applies
// the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serializes writers from concurrent watch jobs.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// HasSeen reports whether the dedupe key has already been notified.
func (s *SQLiteStore) HasSeen(key string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_jobs WHERE job_key = ?", key).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", key, err)
	}
	return true, nil
}

// MarkSeen records a dedupe key. Marking an existing key keeps its original
// timestamp.
func (s *SQLiteStore) MarkSeen(key string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO seen_jobs (job_key, first_seen) VALUES (?, ?)", key, s.now().Unix())
	if err != nil {
		return fmt.Errorf("marking %s as seen: %w", key, err)
	}
	return nil
}

// Cleanup deletes seen keys first recorded more than olderThan ago.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan).Unix()
	if _, err := s.db.Exec("DELETE FROM seen_jobs WHERE first_seen < ?", cutoff); err != nil {
		return fmt.Errorf("cleaning up seen jobs older than %v: %w", olderThan, err)
	}
	return nil
}

// IsEmpty returns true if no key has been recorded yet.
func (s *SQLiteStore) IsEmpty() (bool, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM seen_jobs").Scan(&count); err != nil {
		return false, fmt.Errorf("checking if store is empty: %w", err)
	}
	return count == 0, nil
}

// RecordRun stores a run and its per-provider stats in one transaction.
func (s *SQLiteStore) RecordRun(ctx context.Context, run model.SearchRun) error {
	skills, err := json.Marshal(run.Skills)
	if err != nil {
		return fmt.Errorf("encoding skills: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO search_runs (id, started_at, duration_ms, query, location, skills, collected, returned, scored)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(), run.Query, run.Location,
		string(skills), run.Collected, run.Returned, run.Scored,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	for i, st := range run.Stats {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO provider_stats (run_id, position, name, job_count, error_message) VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, st.Name, st.JobCount, st.ErrorMessage,
		)
		if err != nil {
			return fmt.Errorf("inserting stat %s for run %s: %w", st.Name, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, with their stats in
// registration order.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]model.SearchRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, query, location, skills, collected, returned, scored
		 FROM search_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SearchRun
	for rows.Next() {
		var (
			run              model.SearchRun
			startedMs, durMs int64
			skills           string
		)
		if err := rows.Scan(&run.ID, &startedMs, &durMs, &run.Query, &run.Location, &skills,
			&run.Collected, &run.Returned, &run.Scored); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt = time.UnixMilli(startedMs).UTC()
		run.Duration = msToDuration(durMs)
		if err := json.Unmarshal([]byte(skills), &run.Skills); err != nil {
			return nil, fmt.Errorf("decoding skills for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		stats, err := s.runStats(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Stats = stats
	}
	return runs, nil
}

func (s *SQLiteStore) runStats(ctx context.Context, runID string) ([]model.ProviderRunStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, job_count, error_message FROM provider_stats WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying stats for run %s: %w", runID, err)
	}
	defer rows.Close()

	var stats []model.ProviderRunStat
	for rows.Next() {
		var st model.ProviderRunStat
		if err := rows.Scan(&st.Name, &st.JobCount, &st.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func msToDuration(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }
