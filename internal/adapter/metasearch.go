package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/amishk599/jobsearch/internal/model"
)

const (
	metasearchBaseURL = "https://jsearch.p.rapidapi.com"
	metasearchName    = "metasearch"
)

// metasearchResponse is the top-level response of the RapidAPI-hosted
// metasearch endpoint.
type metasearchResponse struct {
	Status string            `json:"status"`
	Data   []json.RawMessage `json:"data"`
}

type metasearchItem struct {
	JobID              string   `json:"job_id"`
	JobTitle           string   `json:"job_title"`
	EmployerName       string   `json:"employer_name"`
	EmployerLogo       string   `json:"employer_logo"`
	JobDescription     string   `json:"job_description"`
	JobApplyLink       string   `json:"job_apply_link"`
	JobCity            string   `json:"job_city"`
	JobState           string   `json:"job_state"`
	JobCountry         string   `json:"job_country"`
	JobIsRemote        bool     `json:"job_is_remote"`
	JobEmploymentType  string   `json:"job_employment_type"`
	JobMinSalary       *float64 `json:"job_min_salary"`
	JobMaxSalary       *float64 `json:"job_max_salary"`
	JobSalaryCurrency  string   `json:"job_salary_currency"`
	JobRequiredSkills  []any    `json:"job_required_skills"`
	JobPublisher       string   `json:"job_publisher"`
	JobPostedAtISO8601 string   `json:"job_posted_at_datetime_utc"`
}

// MetasearchAdapter queries one engine behind the metasearch API. Each
// configured engine gets its own instance; they share credentials and the
// HTTP client but report under their own source tag.
type MetasearchAdapter struct {
	baseURL string
	apiKey  string
	apiHost string
	engine  string
	client  *http.Client
	logger  *slog.Logger
}

// NewMetasearchAdapter creates an adapter bound to a single engine.
func NewMetasearchAdapter(baseURL, apiKey, apiHost, engine string, client *http.Client, logger *slog.Logger) *MetasearchAdapter {
	if baseURL == "" {
		baseURL = metasearchBaseURL
	}
	if apiHost == "" {
		if u, err := url.Parse(baseURL); err == nil {
			apiHost = u.Host
		}
	}
	return &MetasearchAdapter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		apiHost: apiHost,
		engine:  engine,
		client:  client,
		logger:  logger,
	}
}

// Name returns "metasearch:{engine}".
func (a *MetasearchAdapter) Name() string { return metasearchName + ":" + a.engine }

// FetchJobs runs a single-page search on the adapter's engine. A location
// hint is folded into the query as "{q} in {location}".
func (a *MetasearchAdapter) FetchJobs(ctx context.Context, q model.SearchQuery) ([]model.Job, error) {
	text := q.Text
	if loc := strings.TrimSpace(q.Location); loc != "" {
		text = text + " in " + loc
	}

	params := url.Values{}
	params.Set("query", text)
	params.Set("engine", a.engine)
	params.Set("page", "1")
	params.Set("num_pages", "1")
	reqURL := fmt.Sprintf("%s/search?%s", a.baseURL, params.Encode())

	headers := map[string]string{
		"X-RapidAPI-Key":  a.apiKey,
		"X-RapidAPI-Host": a.apiHost,
	}

	var resp metasearchResponse
	if err := getJSON(ctx, a.client, a.Name(), reqURL, headers, &resp); err != nil {
		return nil, err
	}

	items := decodeEach[metasearchItem](resp.Data, a.Name(), a.logger)
	return normalizeEach(items, a.Name(), a.logger, a.toRaw), nil
}

func (a *MetasearchAdapter) toRaw(it metasearchItem) model.RawJob {
	return model.RawJob{
		ProviderTag:    metasearchName,
		EngineTag:      a.engine,
		NativeID:       it.JobID,
		Source:         a.engine,
		Title:          it.JobTitle,
		Company:        it.EmployerName,
		Location:       joinLocation(it.JobIsRemote, it.JobCity, it.JobState, it.JobCountry),
		Description:    extractText(it.JobDescription),
		URL:            it.JobApplyLink,
		Logo:           it.EmployerLogo,
		Skills:         it.JobRequiredSkills,
		SalaryMin:      it.JobMinSalary,
		SalaryMax:      it.JobMaxSalary,
		SalaryCurrency: it.JobSalaryCurrency,
		JobType:        it.JobEmploymentType,
	}
}

// joinLocation collapses the nested location fields into one string,
// skipping blanks. Remote postings report "Remote".
func joinLocation(remote bool, parts ...string) string {
	if remote {
		return model.DefaultLocation
	}
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
