// Package ranking orders deduplicated postings by relevance to a candidate.
package ranking

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/amishk599/jobsearch/internal/model"
)

// DefaultLimit is the number of postings returned after ranking.
const DefaultLimit = 50

// Scorer rates postings against a resume. Scores are keyed by job ID. A
// scorer may return partial scores together with an error; those scores are
// still applied.
type Scorer interface {
	Score(ctx context.Context, resume string, skills []string, jobs []model.Job) (map[string]int, error)
}

// Ranker scores and sorts postings.
type Ranker struct {
	scorer Scorer // may be nil
	limit  int
	logger *slog.Logger
}

// NewRanker creates a Ranker. A non-positive limit selects DefaultLimit.
func NewRanker(scorer Scorer, limit int, logger *slog.Logger) *Ranker {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Ranker{scorer: scorer, limit: limit, logger: logger}
}

// Rank returns the top postings in final order. Scoring only happens when a
// resume is given; a scoring failure leaves postings unscored.
func (r *Ranker) Rank(ctx context.Context, jobs []model.Job, resume string, skills []string) []model.Job {
	ranked := slices.Clone(jobs)
	if strings.TrimSpace(resume) != "" && r.scorer != nil && len(ranked) > 0 {
		applyScores(ranked, r.score(ctx, resume, skills, ranked))
	}
	Sort(ranked)
	return Limit(ranked, r.limit)
}

func (r *Ranker) score(ctx context.Context, resume string, skills []string, jobs []model.Job) (scores map[string]int) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("scoring panicked", "panic", rec)
			scores = nil
		}
	}()

	scores, err := r.scorer.Score(ctx, resume, skills, jobs)
	if err != nil {
		r.logger.Warn("scoring failed", "error", err, "scored", len(scores), "count", len(jobs))
	}
	return scores
}

func applyScores(jobs []model.Job, scores map[string]int) {
	for i := range jobs {
		s, ok := scores[jobs[i].ID]
		if !ok {
			continue
		}
		s = Clamp(s)
		jobs[i].MatchScore = &s
	}
}

// Clamp bounds a score to 0..100.
func Clamp(s int) int {
	return min(max(s, 0), 100)
}

// Sort orders postings in place: scored before unscored, higher score
// first, then more skills, then shorter title. Equal postings keep their
// relative order.
func Sort(jobs []model.Job) {
	slices.SortStableFunc(jobs, compare)
}

func compare(a, b model.Job) int {
	switch {
	case a.MatchScore != nil && b.MatchScore == nil:
		return -1
	case a.MatchScore == nil && b.MatchScore != nil:
		return 1
	case a.MatchScore != nil && *a.MatchScore != *b.MatchScore:
		return *b.MatchScore - *a.MatchScore
	}
	if d := len(b.Skills) - len(a.Skills); d != 0 {
		return d
	}
	return utf8.RuneCountInString(a.Title) - utf8.RuneCountInString(b.Title)
}

// Limit truncates jobs to at most n entries.
func Limit(jobs []model.Job, n int) []model.Job {
	if n >= 0 && len(jobs) > n {
		return jobs[:n]
	}
	return jobs
}
