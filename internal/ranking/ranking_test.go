package ranking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobsearch/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubScorer struct {
	scores map[string]int
	err    error
	calls  int
}

func (s *stubScorer) Score(_ context.Context, _ string, _ []string, _ []model.Job) (map[string]int, error) {
	s.calls++
	return s.scores, s.err
}

func score(n int) *int { return &n }

func ids(jobs []model.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func TestRank_ScoredBeforeUnscored(t *testing.T) {
	jobs := []model.Job{
		{ID: "many-skills", Title: "Engineer", Skills: []string{"a", "b", "c", "d", "e"}},
		{ID: "scored", Title: "Engineer", Skills: []string{"a", "b"}},
	}
	scorer := &stubScorer{scores: map[string]int{"scored": 90}}

	ranked := NewRanker(scorer, 0, discardLogger()).Rank(context.Background(), jobs, "resume text", nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, "scored", ranked[0].ID)
	assert.Equal(t, 90, *ranked[0].MatchScore)
	assert.Nil(t, ranked[1].MatchScore)
	assert.Nil(t, jobs[1].MatchScore, "input must not be mutated")
}

func TestRank_NoResumeSkipsScoring(t *testing.T) {
	scorer := &stubScorer{scores: map[string]int{"a": 10}}
	jobs := []model.Job{{ID: "a", Title: "X"}}

	ranked := NewRanker(scorer, 0, discardLogger()).Rank(context.Background(), jobs, "   ", []string{"go"})
	assert.Zero(t, scorer.calls)
	assert.Nil(t, ranked[0].MatchScore)
}

func TestRank_ScorerFailureLeavesUnscored(t *testing.T) {
	jobs := []model.Job{
		{ID: "a", Title: "Longer title here"},
		{ID: "b", Title: "Short"},
	}
	scorer := &stubScorer{err: errors.New("llm unavailable")}

	ranked := NewRanker(scorer, 0, discardLogger()).Rank(context.Background(), jobs, "resume", nil)
	assert.Equal(t, []string{"b", "a"}, ids(ranked))
	for _, j := range ranked {
		assert.Nil(t, j.MatchScore)
	}
}

func TestRank_PartialScoresWithErrorAreApplied(t *testing.T) {
	jobs := []model.Job{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	scorer := &stubScorer{scores: map[string]int{"b": 150}, err: errors.New("batch 2 failed")}

	ranked := NewRanker(scorer, 0, discardLogger()).Rank(context.Background(), jobs, "resume", nil)
	assert.Equal(t, "b", ranked[0].ID)
	assert.Equal(t, 100, *ranked[0].MatchScore, "scores are clamped")
}

func TestSort_Keys(t *testing.T) {
	jobs := []model.Job{
		{ID: "unscored-long", Title: "Senior Backend Engineer", Skills: []string{"go"}},
		{ID: "unscored-short", Title: "SRE", Skills: []string{"go"}},
		{ID: "unscored-skills", Title: "Senior Backend Engineer", Skills: []string{"go", "sql", "k8s"}},
		{ID: "s50", Title: "X", MatchScore: score(50)},
		{ID: "s80-few", Title: "X", MatchScore: score(80), Skills: []string{"go"}},
		{ID: "s80-many", Title: "Longer", MatchScore: score(80), Skills: []string{"go", "sql"}},
	}
	Sort(jobs)
	assert.Equal(t, []string{"s80-many", "s80-few", "s50", "unscored-skills", "unscored-short", "unscored-long"}, ids(jobs))
}

func TestSort_StableForEqualKeys(t *testing.T) {
	jobs := []model.Job{
		{ID: "1", Title: "Dev"},
		{ID: "2", Title: "Dev"},
		{ID: "3", Title: "Dev"},
	}
	Sort(jobs)
	assert.Equal(t, []string{"1", "2", "3"}, ids(jobs))
}

func TestRank_LimitsOutput(t *testing.T) {
	jobs := make([]model.Job, 75)
	for i := range jobs {
		jobs[i] = model.Job{ID: fmt.Sprintf("j%d", i), Title: "Dev"}
	}
	ranked := NewRanker(nil, 0, discardLogger()).Rank(context.Background(), jobs, "", nil)
	assert.Len(t, ranked, DefaultLimit)
	assert.Equal(t, "j0", ranked[0].ID)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5))
	assert.Equal(t, 42, Clamp(42))
	assert.Equal(t, 100, Clamp(101))
}
