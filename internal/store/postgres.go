package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/jobsearch/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS search_runs (
	id          UUID PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL,
	query       TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	skills      TEXT[] NOT NULL DEFAULT '{}',
	collected   INTEGER NOT NULL,
	returned    INTEGER NOT NULL,
	scored      BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS provider_stats (
	run_id        UUID NOT NULL REFERENCES search_runs(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	name          TEXT NOT NULL,
	job_count     INTEGER NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_search_runs_started ON search_runs(started_at DESC);`

// PostgresStore records search runs in PostgreSQL for deployments where
// several API instances share one run log.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and applies the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying postgres schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// RecordRun inserts the run and its stats in one transaction.
func (s *PostgresStore) RecordRun(ctx context.Context, run model.SearchRun) error {
	skills := run.Skills
	if skills == nil {
		skills = []string{}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO search_runs (id, started_at, duration_ms, query, location, skills, collected, returned, scored)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.StartedAt, run.Duration.Milliseconds(), run.Query, run.Location,
		skills, run.Collected, run.Returned, run.Scored,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	batch := &pgx.Batch{}
	for i, st := range run.Stats {
		batch.Queue(
			`INSERT INTO provider_stats (run_id, position, name, job_count, error_message) VALUES ($1, $2, $3, $4, $5)`,
			run.ID, i, st.Name, st.JobCount, st.ErrorMessage,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting stats for run %s: %w", run.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *PostgresStore) RecentRuns(ctx context.Context, limit int) ([]model.SearchRun, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, started_at, duration_ms, query, location, skills, collected, returned, scored
		 FROM search_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SearchRun, error) {
		var (
			run   model.SearchRun
			durMs int64
		)
		err := row.Scan(&run.ID, &run.StartedAt, &durMs, &run.Query, &run.Location, &run.Skills,
			&run.Collected, &run.Returned, &run.Scored)
		run.Duration = msToDuration(durMs)
		return run, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning runs: %w", err)
	}

	for i := range runs {
		statRows, err := s.pool.Query(ctx,
			`SELECT name, job_count, error_message FROM provider_stats WHERE run_id = $1 ORDER BY position`, runs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("querying stats for run %s: %w", runs[i].ID, err)
		}
		stats, err := pgx.CollectRows(statRows, func(row pgx.CollectableRow) (model.ProviderRunStat, error) {
			var st model.ProviderRunStat
			err := row.Scan(&st.Name, &st.JobCount, &st.ErrorMessage)
			return st, err
		})
		if err != nil {
			return nil, fmt.Errorf("scanning stats for run %s: %w", runs[i].ID, err)
		}
		runs[i].Stats = stats
	}
	return runs, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
