// Package aggregate runs every registered job source for one query and
// collects their postings and per-source diagnostics.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobsearch/internal/model"
)

// Source is one registered provider or engine. Concurrent sources are
// fanned out together after the sequential ones finish.
type Source struct {
	Fetcher    model.JobFetcher
	Concurrent bool
}

// Result holds the concatenated postings and one stat per source, in
// registration order.
type Result struct {
	Jobs  []model.Job
	Stats []model.ProviderRunStat
}

// Aggregator runs sources for a query. It keeps no state between calls.
type Aggregator struct {
	sources []Source
	logger  *slog.Logger
}

// New creates an Aggregator over sources.
func New(sources []Source, logger *slog.Logger) *Aggregator {
	return &Aggregator{sources: sources, logger: logger}
}

type slot struct {
	jobs []model.Job
	stat model.ProviderRunStat
}

// Collect runs sequential sources one by one, then launches all concurrent
// sources together and waits for every one of them. A failing source only
// affects its own stat.
func (a *Aggregator) Collect(ctx context.Context, q model.SearchQuery) Result {
	slots := make([]slot, len(a.sources))

	for i, src := range a.sources {
		if src.Concurrent {
			continue
		}
		slots[i] = a.run(ctx, src.Fetcher, q)
	}

	// Each goroutine owns its slot and always returns nil, so Wait never
	// short-circuits and no sibling is cancelled.
	var g errgroup.Group
	for i, src := range a.sources {
		if !src.Concurrent {
			continue
		}
		g.Go(func() error {
			slots[i] = a.run(ctx, src.Fetcher, q)
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	res.Stats = make([]model.ProviderRunStat, 0, len(slots))
	for _, concurrent := range []bool{false, true} {
		for i, src := range a.sources {
			if src.Concurrent == concurrent {
				res.Jobs = append(res.Jobs, slots[i].jobs...)
			}
		}
	}
	for _, s := range slots {
		res.Stats = append(res.Stats, s.stat)
	}
	return res
}

// run calls one source, converting errors and panics into its stat.
func (a *Aggregator) run(ctx context.Context, f model.JobFetcher, q model.SearchQuery) (s slot) {
	name := f.Name()
	s.stat.Name = name
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("provider panicked", "provider", name, "panic", r)
			s = slot{stat: model.ProviderRunStat{Name: name, ErrorMessage: fmt.Sprintf("panic: %v", r)}}
		}
	}()

	jobs, err := f.FetchJobs(ctx, q)
	if err != nil {
		s.stat.ErrorMessage = err.Error()
	}
	s.jobs = jobs
	s.stat.JobCount = len(jobs)

	a.logger.Info("provider finished",
		"provider", name,
		"query", q.Text,
		"count", len(jobs),
		"error", s.stat.ErrorMessage,
	)
	return s
}
