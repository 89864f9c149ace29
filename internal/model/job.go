package model

import (
	"context"
	"time"
)

// Unified representation of a job posting from any provider.
type Job struct {
	ID             string   `json:"id"` // {provider}-{engine}-{native id or uuid}
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Description    string   `json:"description"` // plain text, at most MaxDescriptionLen chars + "..."
	URL            string   `json:"url"`         // apply link or NoURL
	LogoURL        string   `json:"logoUrl,omitempty"`
	Source         string   `json:"source"` // provider or engine tag
	Skills         []string `json:"skills"`
	SalaryMin      *float64 `json:"salaryMin,omitempty"`
	SalaryMax      *float64 `json:"salaryMax,omitempty"`
	SalaryCurrency string   `json:"salaryCurrency,omitempty"`
	JobType        string   `json:"jobType,omitempty"`
	MatchScore     *int     `json:"matchScore,omitempty"` // 0-100, set by ranking only
}

// SearchQuery is what a single provider call is built from.
type SearchQuery struct {
	Text     string
	Location string   // empty when no location hint is known
	Skills   []string // passed through for providers that search on skills
}

// JobFetcher fetches job postings for a query from one provider (or one
// engine of a metasearch provider).
type JobFetcher interface {
	Name() string
	FetchJobs(ctx context.Context, q SearchQuery) ([]Job, error)
}

// ProviderRunStat records the outcome of one provider during aggregation.
type ProviderRunStat struct {
	Name         string `json:"name"`
	JobCount     int    `json:"jobCount"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// JobStore tracks which dedupe keys have been notified in watch mode.
type JobStore interface {
	HasSeen(jobID string) (bool, error)
	MarkSeen(jobID string) error
	Cleanup(olderThan time.Duration) error
	IsEmpty() (bool, error)
}

// Notifier sends notifications for new job matches.
type Notifier interface {
	Notify(jobs []Job) error
}

// JobFilter decides whether a job matches the user's criteria.
type JobFilter interface {
	Match(job Job) bool
}
