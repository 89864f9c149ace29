package aggregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobsearch/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFetcher struct {
	name  string
	jobs  []model.Job
	err   error
	panic bool
	delay time.Duration
	onRun func()
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) FetchJobs(_ context.Context, _ model.SearchQuery) ([]model.Job, error) {
	if f.onRun != nil {
		f.onRun()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panic {
		panic("boom")
	}
	return f.jobs, f.err
}

func job(id string) model.Job {
	return model.Job{ID: id, Title: "Engineer " + id, Company: "Acme"}
}

func TestCollect_SettleAllIsolation(t *testing.T) {
	sources := []Source{
		{Fetcher: &fakeFetcher{name: "remotive", jobs: []model.Job{job("r1")}}},
		{Fetcher: &fakeFetcher{name: "metasearch:linkedin", jobs: []model.Job{job("l1"), job("l2")}, delay: 20 * time.Millisecond}, Concurrent: true},
		{Fetcher: &fakeFetcher{name: "metasearch:indeed", err: errors.New("HTTP 500")}, Concurrent: true},
		{Fetcher: &fakeFetcher{name: "metasearch:glassdoor", panic: true}, Concurrent: true},
		{Fetcher: &fakeFetcher{name: "adzuna", jobs: []model.Job{job("a1")}}, Concurrent: true},
	}

	res := New(sources, discardLogger()).Collect(context.Background(), model.SearchQuery{Text: "go"})

	ids := make([]string, 0, len(res.Jobs))
	for _, j := range res.Jobs {
		ids = append(ids, j.ID)
	}
	assert.Equal(t, []string{"r1", "l1", "l2", "a1"}, ids)

	require.Len(t, res.Stats, 5)
	assert.Equal(t, model.ProviderRunStat{Name: "remotive", JobCount: 1}, res.Stats[0])
	assert.Equal(t, model.ProviderRunStat{Name: "metasearch:linkedin", JobCount: 2}, res.Stats[1])
	assert.Equal(t, "metasearch:indeed", res.Stats[2].Name)
	assert.Equal(t, "HTTP 500", res.Stats[2].ErrorMessage)
	assert.Zero(t, res.Stats[2].JobCount)
	assert.Equal(t, "metasearch:glassdoor", res.Stats[3].Name)
	assert.Contains(t, res.Stats[3].ErrorMessage, "panic")
	assert.Equal(t, 1, res.Stats[4].JobCount)
}

func TestCollect_SequentialRunsBeforeConcurrent(t *testing.T) {
	var seqDone, sawSeqFirst atomic.Bool

	paid := &fakeFetcher{name: "paid", onRun: func() { sawSeqFirst.Store(seqDone.Load()) }}
	free := &fakeFetcher{name: "free", onRun: func() {
		time.Sleep(10 * time.Millisecond)
		seqDone.Store(true)
	}}
	sources := []Source{
		{Fetcher: paid, Concurrent: true},
		{Fetcher: free},
	}

	res := New(sources, discardLogger()).Collect(context.Background(), model.SearchQuery{Text: "go"})
	assert.True(t, sawSeqFirst.Load(), "concurrent sources must start after sequential ones")
	require.Len(t, res.Stats, 2)
	assert.Equal(t, "paid", res.Stats[0].Name, "stats stay in registration order")
}

func TestCollect_ConcurrentSourcesRunTogether(t *testing.T) {
	const n = 4
	var arrived, met atomic.Int32

	// Each engine waits until all n have started; that only happens if they
	// run at the same time.
	barrier := func() {
		arrived.Add(1)
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if arrived.Load() == n {
				met.Add(1)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}

	sources := make([]Source, n)
	for i := range sources {
		sources[i] = Source{Concurrent: true, Fetcher: &fakeFetcher{name: "engine", onRun: barrier}}
	}

	New(sources, discardLogger()).Collect(context.Background(), model.SearchQuery{Text: "go"})
	assert.Equal(t, int32(n), met.Load())
}

func TestCollect_NoSources(t *testing.T) {
	res := New(nil, discardLogger()).Collect(context.Background(), model.SearchQuery{Text: "go"})
	assert.Empty(t, res.Jobs)
	assert.Empty(t, res.Stats)
}
