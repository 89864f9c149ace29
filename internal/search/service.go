// Package search wires query building, aggregation, deduplication and
// ranking into the single job search operation.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobsearch/internal/aggregate"
	"github.com/amishk599/jobsearch/internal/dedupe"
	"github.com/amishk599/jobsearch/internal/model"
	"github.com/amishk599/jobsearch/internal/query"
	"github.com/amishk599/jobsearch/internal/ranking"
)

// Messages returned in SearchResponse.Error.
const (
	NoJobsMessage   = "No jobs found. Try different skills or a broader query."
	InternalMessage = "Job search failed unexpectedly. Please try again."
)

const recordTimeout = 5 * time.Second

// Service runs the search pipeline. It holds no per-request state, so one
// Service serves concurrent requests.
type Service struct {
	builder    *query.Builder
	aggregator *aggregate.Aggregator
	ranker     *ranking.Ranker
	recorder   model.RunRecorder // may be nil
	logger     *slog.Logger
}

// NewService creates a Service. recorder may be nil.
func NewService(builder *query.Builder, aggregator *aggregate.Aggregator, ranker *ranking.Ranker, recorder model.RunRecorder, logger *slog.Logger) *Service {
	return &Service{
		builder:    builder,
		aggregator: aggregator,
		ranker:     ranker,
		recorder:   recorder,
		logger:     logger,
	}
}

// Search runs one request end to end. The only error it returns wraps
// model.ErrInvalidRequest; provider failures degrade to fewer (or no) jobs.
func (s *Service) Search(ctx context.Context, req model.SearchRequest) (resp model.SearchResponse, err error) {
	if err := req.Validate(); err != nil {
		return model.SearchResponse{Jobs: []model.Job{}}, err
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("search pipeline panicked", "panic", r)
			resp = model.SearchResponse{Jobs: []model.Job{}, Error: InternalMessage}
			err = nil
		}
	}()

	run := model.SearchRun{ID: uuid.NewString(), StartedAt: time.Now()}

	skills := cleanSkills(req.Skills)
	plan := s.builder.Build(ctx, skills, req.Query)
	q := model.SearchQuery{Text: plan.Phrase, Location: plan.Location, Skills: skills}
	run.Query, run.Location, run.Skills = q.Text, q.Location, skills

	s.logger.Info("search started", "run_id", run.ID, "query", q.Text, "location", q.Location, "skills", len(skills))

	collected := s.aggregator.Collect(ctx, q)
	run.Stats = collected.Stats
	run.Collected = len(collected.Jobs)

	unique := dedupe.Dedupe(collected.Jobs)

	resp = model.SearchResponse{Jobs: []model.Job{}}
	if len(unique) == 0 {
		resp.Error = NoJobsMessage
		s.logDiagnostics(run)
	} else {
		ranked := s.ranker.Rank(ctx, unique, req.ResumeText, skills)
		resp.Jobs = append(resp.Jobs, ranked...)
		run.Scored = len(ranked) > 0 && ranked[0].MatchScore != nil
	}

	run.Returned = len(resp.Jobs)
	run.Duration = time.Since(run.StartedAt)
	s.logger.Info("search finished",
		"run_id", run.ID,
		"collected", run.Collected,
		"unique", len(unique),
		"count", run.Returned,
		"scored", run.Scored,
		"duration", run.Duration.Round(time.Millisecond),
	)
	s.record(ctx, run)
	return resp, nil
}

// logDiagnostics explains an empty result per provider.
func (s *Service) logDiagnostics(run model.SearchRun) {
	if len(run.Stats) == 0 {
		s.logger.Warn("no job sources configured", "run_id", run.ID)
		return
	}
	for _, st := range run.Stats {
		s.logger.Warn("provider returned no usable jobs",
			"run_id", run.ID,
			"provider", st.Name,
			"count", st.JobCount,
			"error", st.ErrorMessage,
		)
	}
}

// record stores run diagnostics. It runs detached from ctx so a caller that
// gave up does not lose the record.
func (s *Service) record(ctx context.Context, run model.SearchRun) {
	if s.recorder == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.recorder.RecordRun(rctx, run); err != nil {
		s.logger.Warn("failed to record search run", "run_id", run.ID, "error", err)
	}
}

// IsInvalidRequest reports whether err came from request validation.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, model.ErrInvalidRequest)
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			out = append(out, sk)
		}
	}
	return out
}
