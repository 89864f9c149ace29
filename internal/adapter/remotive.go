package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/amishk599/jobsearch/internal/model"
)

const (
	remotiveBaseURL = "https://remotive.com"
	remotiveName    = "remotive"
	remotiveEngine  = "free"
)

// remotiveJob represents a single job in the Remotive API response. Records
// arrive as loose maps and are decoded one by one so a record with
// unexpected field types is dropped on its own.
type remotiveJob struct {
	ID                        string `json:"id"`
	URL                       string `json:"url"`
	Title                     string `json:"title"`
	CompanyName               string `json:"company_name"`
	CompanyLogo               string `json:"company_logo"`
	Category                  string `json:"category"`
	Tags                      []any  `json:"tags"`
	JobType                   string `json:"job_type"`
	PublicationDate           string `json:"publication_date"`
	CandidateRequiredLocation string `json:"candidate_required_location"`
	Salary                    string `json:"salary"`
	Description               string `json:"description"`
}

// remotiveResponse is the top-level Remotive remote-jobs API response.
type remotiveResponse struct {
	JobCount int              `json:"job-count"`
	Jobs     []map[string]any `json:"jobs"`
}

// RemotiveAdapter fetches jobs from the free Remotive API. It needs no
// credentials and is always registered.
type RemotiveAdapter struct {
	baseURL string
	limit   int // 0 means no cap
	client  *http.Client
	logger  *slog.Logger
}

// NewRemotiveAdapter creates an adapter for the Remotive API. An empty
// baseURL selects the public endpoint.
func NewRemotiveAdapter(baseURL string, limit int, client *http.Client, logger *slog.Logger) *RemotiveAdapter {
	if baseURL == "" {
		baseURL = remotiveBaseURL
	}
	return &RemotiveAdapter{
		baseURL: baseURL,
		limit:   limit,
		client:  client,
		logger:  logger,
	}
}

// Name returns the provider tag.
func (a *RemotiveAdapter) Name() string { return remotiveName }

// FetchJobs searches Remotive for q.Text. Remotive only lists remote roles,
// so q.Location is ignored.
func (a *RemotiveAdapter) FetchJobs(ctx context.Context, q model.SearchQuery) ([]model.Job, error) {
	params := url.Values{}
	params.Set("search", q.Text)
	if a.limit > 0 {
		params.Set("limit", strconv.Itoa(a.limit))
	}
	reqURL := fmt.Sprintf("%s/api/remote-jobs?%s", a.baseURL, params.Encode())

	var resp remotiveResponse
	if err := getJSON(ctx, a.client, remotiveName, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]remotiveJob, 0, len(resp.Jobs))
	for i, raw := range resp.Jobs {
		rj, err := decodeRemotiveJob(raw)
		if err != nil {
			a.logger.Warn("skipping undecodable record", "provider", remotiveName, "index", i, "error", err)
			continue
		}
		records = append(records, rj)
	}

	return normalizeEach(records, remotiveName, a.logger, remotiveToRaw), nil
}

func decodeRemotiveJob(raw map[string]any) (remotiveJob, error) {
	var rj remotiveJob
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rj,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return rj, err
	}
	if err := dec.Decode(raw); err != nil {
		return rj, err
	}
	return rj, nil
}

func remotiveToRaw(rj remotiveJob) model.RawJob {
	raw := model.RawJob{
		ProviderTag: remotiveName,
		EngineTag:   remotiveEngine,
		NativeID:    rj.ID,
		Source:      remotiveName,
		Title:       rj.Title,
		Company:     rj.CompanyName,
		Location:    rj.CandidateRequiredLocation,
		Description: extractText(rj.Description),
		URL:         rj.URL,
		Logo:        rj.CompanyLogo,
		Skills:      rj.Tags,
		JobType:     rj.JobType,
	}
	if lo, hi, currency, ok := model.InferSalary(rj.Salary); ok {
		raw.SalaryMin = &lo
		raw.SalaryMax = &hi
		raw.SalaryCurrency = currency
	}
	return raw
}
