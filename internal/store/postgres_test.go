package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobsearch/internal/model"
)

// Requires a disposable database; set JOBSEARCH_TEST_POSTGRES_URL to run.
func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("JOBSEARCH_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("JOBSEARCH_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	run := model.SearchRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond),
		Duration:  2 * time.Second,
		Query:     "go developer",
		Skills:    []string{"go", "sql"},
		Collected: 5,
		Returned:  4,
		Stats:     []model.ProviderRunStat{{Name: "remotive", JobCount: 5}},
	}
	if err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := s.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Fatalf("RecentRuns = %+v", runs)
	}
	if len(runs[0].Stats) != 1 || runs[0].Stats[0].JobCount != 5 {
		t.Errorf("Stats = %+v", runs[0].Stats)
	}
}
