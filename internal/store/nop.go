package store

import (
	"context"
	"time"

	"github.com/amishk599/jobsearch/internal/model"
)

// NopStore is used for dry runs and when run logging is disabled. It never
// marks keys as seen, so every match appears new on each cycle, and it
// discards run records.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(string) (bool, error)                     { return false, nil }
func (s *NopStore) MarkSeen(string) error                            { return nil }
func (s *NopStore) Cleanup(time.Duration) error                      { return nil }
func (s *NopStore) IsEmpty() (bool, error)                           { return false, nil }
func (s *NopStore) Close() error                                     { return nil }
func (s *NopStore) RecordRun(context.Context, model.SearchRun) error { return nil }

func (s *NopStore) RecentRuns(context.Context, int) ([]model.SearchRun, error) {
	return nil, nil
}
