package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"text/template"

	"github.com/amishk599/jobsearch/internal/model"
)

const (
	// DefaultBatchSize is how many postings go into one scoring prompt.
	DefaultBatchSize = 10

	maxResumeChars      = 8000
	maxJobDescPromptLen = 600
)

// BatchScorer implements ranking.Scorer by sending postings to an LLM in
// fixed-size batches.
type BatchScorer struct {
	provider  LLMProvider
	tmpl      *template.Template
	batchSize int
	logger    *slog.Logger
}

// NewBatchScorer creates a scorer. A non-positive batchSize selects
// DefaultBatchSize.
func NewBatchScorer(provider LLMProvider, tmpl *template.Template, batchSize int, logger *slog.Logger) *BatchScorer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchScorer{
		provider:  provider,
		tmpl:      tmpl,
		batchSize: batchSize,
		logger:    logger,
	}
}

type promptJob struct {
	ID          string
	Title       string
	Company     string
	Skills      string
	Description string
}

type rawScores struct {
	Scores []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"scores"`
}

// Score returns a score per job ID. A failed batch leaves only its own
// postings unscored; the returned error joins every batch failure.
func (s *BatchScorer) Score(ctx context.Context, resume string, skills []string, jobs []model.Job) (map[string]int, error) {
	scores := make(map[string]int, len(jobs))
	var errs []error

	for start := 0; start < len(jobs); start += s.batchSize {
		end := min(start+s.batchSize, len(jobs))
		batch := jobs[start:end]

		got, err := s.scoreBatch(ctx, resume, skills, batch)
		if err != nil {
			s.logger.Warn("scoring batch failed",
				"batch_start", start,
				"count", len(batch),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("batch %d-%d: %w", start, end-1, err))
			continue
		}
		for id, v := range got {
			scores[id] = v
		}
	}

	return scores, errors.Join(errs...)
}

func (s *BatchScorer) scoreBatch(ctx context.Context, resume string, skills []string, batch []model.Job) (map[string]int, error) {
	data := struct {
		Resume string
		Skills []string
		Jobs   []promptJob
	}{
		Resume: truncateRunes(resume, maxResumeChars),
		Skills: skills,
		Jobs:   make([]promptJob, 0, len(batch)),
	}
	for _, j := range batch {
		data.Jobs = append(data.Jobs, promptJob{
			ID:          j.ID,
			Title:       j.Title,
			Company:     j.Company,
			Skills:      strings.Join(j.Skills, ", "),
			Description: truncateRunes(j.Description, maxJobDescPromptLen),
		})
	}

	var promptBuf bytes.Buffer
	if err := s.tmpl.Execute(&promptBuf, data); err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := s.provider.Complete(ctx, promptBuf.String(), scoresSchema)
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}

	raw = stripCodeFence(raw)
	if err := validateJSON(scoresSchema, raw); err != nil {
		return nil, err
	}

	var rs rawScores
	if err := json.Unmarshal([]byte(raw), &rs); err != nil {
		return nil, fmt.Errorf("unmarshal scores JSON: %w", err)
	}

	// Only IDs from this batch count; the model sometimes invents others.
	inBatch := make(map[string]bool, len(batch))
	for _, j := range batch {
		inBatch[j.ID] = true
	}
	out := make(map[string]int, len(rs.Scores))
	for _, sc := range rs.Scores {
		if !inBatch[sc.ID] {
			continue
		}
		out[sc.ID] = int(math.Round(sc.Score))
	}
	return out, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
