package model

import (
	"context"
	"time"
)

// SearchRun is the diagnostic record of one pipeline execution.
type SearchRun struct {
	ID        string            `json:"id"`
	StartedAt time.Time         `json:"startedAt"`
	Duration  time.Duration     `json:"duration"`
	Query     string            `json:"query"`
	Location  string            `json:"location,omitempty"`
	Skills    []string          `json:"skills,omitempty"`
	Collected int               `json:"collected"` // postings before dedupe
	Returned  int               `json:"returned"`
	Scored    bool              `json:"scored"`
	Stats     []ProviderRunStat `json:"stats"`
}

// RunRecorder persists search run diagnostics.
type RunRecorder interface {
	RecordRun(ctx context.Context, run SearchRun) error
	RecentRuns(ctx context.Context, limit int) ([]SearchRun, error)
}
