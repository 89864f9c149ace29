package poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobsearch/internal/dedupe"
	"github.com/amishk599/jobsearch/internal/model"
)

// Searcher runs the full search pipeline for one request.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error)
}

// SearchPoller owns the watch pipeline for one saved search:
// search → filter → drop seen → notify → mark seen.
type SearchPoller struct {
	name     string
	req      model.SearchRequest
	searcher Searcher
	filter   model.JobFilter
	store    model.JobStore
	notifier model.Notifier
	logger   *slog.Logger
}

// NewSearchPoller creates a poller wired with all its dependencies.
func NewSearchPoller(
	name string,
	req model.SearchRequest,
	searcher Searcher,
	filter model.JobFilter,
	store model.JobStore,
	notifier model.Notifier,
	logger *slog.Logger,
) *SearchPoller {
	return &SearchPoller{
		name:     name,
		req:      req,
		searcher: searcher,
		filter:   filter,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Name returns the saved search name.
func (p *SearchPoller) Name() string { return p.name }

// Poll runs one cycle and notifies about matches not seen before.
func (p *SearchPoller) Poll(ctx context.Context) error {
	return p.run(ctx, true)
}

// Seed runs one cycle and marks every match as seen without notifying, so
// a fresh store does not flood the channel with the current backlog.
func (p *SearchPoller) Seed(ctx context.Context) error {
	return p.run(ctx, false)
}

func (p *SearchPoller) run(ctx context.Context, notify bool) error {
	resp, err := p.searcher.Search(ctx, p.req)
	if err != nil {
		return fmt.Errorf("polling %s: %w", p.name, err)
	}

	var matched []model.Job
	for _, job := range resp.Jobs {
		if p.filter.Match(job) {
			matched = append(matched, job)
		}
	}

	type fresh struct {
		key string
		job model.Job
	}
	var newJobs []fresh
	pending := make(map[string]bool)
	for _, job := range matched {
		key, ok := dedupe.Key(job)
		if !ok {
			key = job.ID
		}
		if pending[key] {
			continue
		}
		seen, err := p.store.HasSeen(key)
		if err != nil {
			return fmt.Errorf("polling %s: checking seen status: %w", p.name, err)
		}
		if !seen {
			pending[key] = true
			newJobs = append(newJobs, fresh{key: key, job: job})
		}
	}

	if notify && len(newJobs) > 0 {
		jobs := make([]model.Job, len(newJobs))
		for i, f := range newJobs {
			jobs[i] = f.job
		}
		if err := p.notifier.Notify(jobs); err != nil {
			return fmt.Errorf("polling %s: notifying: %w", p.name, err)
		}
	}

	for _, f := range newJobs {
		if err := p.store.MarkSeen(f.key); err != nil {
			return fmt.Errorf("polling %s: marking seen: %w", p.name, err)
		}
	}

	p.logger.Info("polled search",
		"search", p.name,
		"returned", len(resp.Jobs),
		"matched", len(matched),
		"new", len(newJobs),
		"seeded", !notify,
	)
	return nil
}
