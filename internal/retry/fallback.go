package retry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/jobsearch/internal/model"
)

// DefaultAttemptTimeout bounds a single provider call.
const DefaultAttemptTimeout = 30 * time.Second

// DefaultFallbackQueries are tried in order when the initial query finds
// nothing or fails.
var DefaultFallbackQueries = []string{
	"software engineer",
	"software developer",
	"junior developer",
	"backend developer",
	"full stack developer",
	"intern software developer",
}

// Outcome describes one orchestrated fetch.
type Outcome struct {
	Jobs     []model.Job
	Query    string // query that produced Jobs; empty when none did
	Attempts int
	LastErr  error // last attempt error; nil once an attempt returns jobs
}

// FallbackFetcher is a decorator that bounds each call to the wrapped
// JobFetcher with a timeout and, when a call fails or comes back empty,
// retries it with a fixed list of broader queries.
type FallbackFetcher struct {
	inner          model.JobFetcher
	fallbacks      []string
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// NewFallbackFetcher wraps a JobFetcher with fallback logic. A non-positive
// attemptTimeout selects DefaultAttemptTimeout.
func NewFallbackFetcher(inner model.JobFetcher, fallbacks []string, attemptTimeout time.Duration, logger *slog.Logger) *FallbackFetcher {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	return &FallbackFetcher{
		inner:          inner,
		fallbacks:      fallbacks,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// Name returns the wrapped fetcher's name.
func (f *FallbackFetcher) Name() string { return f.inner.Name() }

// FetchJobs returns the first non-empty result. When every attempt comes
// back empty it returns the last attempt's error, which is nil if no attempt
// actually failed. Exhaustion is never fatal to the caller.
func (f *FallbackFetcher) FetchJobs(ctx context.Context, q model.SearchQuery) ([]model.Job, error) {
	out := f.Run(ctx, q)
	if len(out.Jobs) > 0 {
		return out.Jobs, nil
	}
	return nil, out.LastErr
}

// Run performs at most 1+len(fallbacks) attempts and stops at the first one
// that yields a posting. Cancelling ctx stops further attempts.
func (f *FallbackFetcher) Run(ctx context.Context, q model.SearchQuery) Outcome {
	var out Outcome
	for _, text := range f.queries(q.Text) {
		if err := ctx.Err(); err != nil {
			out.LastErr = fmt.Errorf("%s: fallback cancelled: %w", f.inner.Name(), err)
			return out
		}

		attemptQuery := q
		attemptQuery.Text = text
		out.Attempts++

		jobs, err := f.attempt(ctx, attemptQuery)
		if err != nil {
			f.logger.Warn("provider attempt failed",
				"provider", f.inner.Name(),
				"query", text,
				"attempt", out.Attempts,
				"error", err,
			)
			out.LastErr = err
			continue
		}
		if len(jobs) == 0 {
			f.logger.Debug("provider attempt returned no jobs",
				"provider", f.inner.Name(),
				"query", text,
				"attempt", out.Attempts,
			)
			continue
		}

		if out.Attempts > 1 {
			f.logger.Info("fallback query succeeded",
				"provider", f.inner.Name(),
				"query", text,
				"attempt", out.Attempts,
				"count", len(jobs),
			)
		}
		out.Jobs = jobs
		out.Query = text
		out.LastErr = nil
		return out
	}
	return out
}

// queries returns the initial query followed by every fallback that differs
// from it, ignoring case.
func (f *FallbackFetcher) queries(initial string) []string {
	initial = strings.TrimSpace(initial)
	qs := make([]string, 0, 1+len(f.fallbacks))
	qs = append(qs, initial)
	for _, fb := range f.fallbacks {
		if strings.EqualFold(strings.TrimSpace(fb), initial) {
			continue
		}
		qs = append(qs, fb)
	}
	return qs
}

type attemptResult struct {
	jobs []model.Job
	err  error
}

// attempt runs one call under the per-attempt timeout. A call that ignores
// its context is abandoned when the timeout fires; its eventual result is
// discarded. Panics become errors.
func (f *FallbackFetcher) attempt(ctx context.Context, q model.SearchQuery) ([]model.Job, error) {
	actx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	results := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- attemptResult{err: fmt.Errorf("%s: panic: %v", f.inner.Name(), r)}
			}
		}()
		jobs, err := f.inner.FetchJobs(actx, q)
		results <- attemptResult{jobs: jobs, err: err}
	}()

	select {
	case res := <-results:
		return res.jobs, res.err
	case <-actx.Done():
		return nil, &model.FetchError{
			Provider: f.inner.Name(),
			Err:      fmt.Errorf("attempt aborted after %s: %w", f.attemptTimeout, actx.Err()),
		}
	}
}
