package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/jobsearch/internal/model"
)

const (
	adzunaBaseURL        = "https://api.adzuna.com/v1/api/jobs"
	adzunaName           = "adzuna"
	adzunaDefaultCountry = "us"
	adzunaDefaultPerPage = 20
)

// adzunaCurrencies maps an Adzuna country code to the currency its salary
// figures are quoted in.
var adzunaCurrencies = map[string]string{
	"at": "EUR", "au": "AUD", "be": "EUR", "br": "BRL", "ca": "CAD",
	"ch": "CHF", "de": "EUR", "es": "EUR", "fr": "EUR", "gb": "GBP",
	"in": "INR", "it": "EUR", "mx": "MXN", "nl": "EUR", "nz": "NZD",
	"pl": "PLN", "sg": "SGD", "us": "USD", "za": "ZAR",
}

type adzunaResponse struct {
	Count   int               `json:"count"`
	Results []json.RawMessage `json:"results"`
}

type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaCompany  `json:"company"`
	Location     adzunaLocation `json:"location"`
	SalaryMin    *float64       `json:"salary_min"`
	SalaryMax    *float64       `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
	ContractType string         `json:"contract_type"`
	Category     adzunaCategory `json:"category"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Label string `json:"label"`
}

// AdzunaAdapter fetches jobs from the Adzuna search API, which reports
// salary ranges directly.
type AdzunaAdapter struct {
	baseURL string
	appID   string
	appKey  string
	country string
	perPage int
	client  *http.Client
	logger  *slog.Logger
}

// NewAdzunaAdapter creates an adapter for one Adzuna country index.
func NewAdzunaAdapter(baseURL, appID, appKey, country string, perPage int, client *http.Client, logger *slog.Logger) *AdzunaAdapter {
	if baseURL == "" {
		baseURL = adzunaBaseURL
	}
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = adzunaDefaultCountry
	}
	if perPage <= 0 {
		perPage = adzunaDefaultPerPage
	}
	return &AdzunaAdapter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		appID:   appID,
		appKey:  appKey,
		country: country,
		perPage: perPage,
		client:  client,
		logger:  logger,
	}
}

// Name returns the provider tag.
func (a *AdzunaAdapter) Name() string { return adzunaName }

// FetchJobs fetches the first results page. Skills are sent as "what_or" so
// postings mentioning any of them match alongside the phrase.
func (a *AdzunaAdapter) FetchJobs(ctx context.Context, q model.SearchQuery) ([]model.Job, error) {
	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(a.perPage))
	params.Set("what", q.Text)
	if len(q.Skills) > 0 {
		params.Set("what_or", strings.Join(q.Skills, " "))
	}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		params.Set("where", loc)
	}
	params.Set("content-type", "application/json")
	reqURL := fmt.Sprintf("%s/%s/search/1?%s", a.baseURL, a.country, params.Encode())

	var resp adzunaResponse
	if err := getJSON(ctx, a.client, adzunaName, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	results := decodeEach[adzunaResult](resp.Results, adzunaName, a.logger)
	return normalizeEach(results, adzunaName, a.logger, a.toRaw), nil
}

func (a *AdzunaAdapter) toRaw(r adzunaResult) model.RawJob {
	raw := model.RawJob{
		ProviderTag: adzunaName,
		EngineTag:   a.country,
		NativeID:    r.ID,
		Source:      adzunaName,
		Title:       extractText(r.Title),
		Company:     r.Company.DisplayName,
		Location:    r.Location.DisplayName,
		Description: extractText(r.Description),
		URL:         r.RedirectURL,
		SalaryMin:   r.SalaryMin,
		SalaryMax:   r.SalaryMax,
		JobType:     r.ContractTime,
	}
	if raw.JobType == "" {
		raw.JobType = r.ContractType
	}
	if r.SalaryMin != nil || r.SalaryMax != nil {
		raw.SalaryCurrency = adzunaCurrencies[a.country]
	}
	return raw
}
