package model

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Placeholder values for fields a provider left blank.
const (
	DefaultTitle       = "No title"
	DefaultCompany     = "Unknown company"
	DefaultLocation    = "Remote"
	DefaultDescription = "No description available"
	NoURL              = "#"

	MaxDescriptionLen = 500
)

// RawJob is the provider-native view of a posting before normalization.
// Adapters fill in what their provider returns and call Normalize.
type RawJob struct {
	ProviderTag string
	EngineTag   string
	NativeID    string
	Source      string

	Title       string
	Company     string
	Location    string
	Description string // plain text
	URL         string
	Logo        string
	Skills      []any

	SalaryMin      *float64
	SalaryMax      *float64
	SalaryCurrency string
	JobType        string
}

// Normalize maps a RawJob into the canonical Job, applying placeholder
// defaults, description truncation, URL validation, logo derivation and
// salary/job type inference from the description.
func Normalize(raw RawJob) Job {
	nativeID := strings.TrimSpace(raw.NativeID)
	if nativeID == "" {
		nativeID = uuid.NewString()
	}

	job := Job{
		ID:          raw.ProviderTag + "-" + raw.EngineTag + "-" + nativeID,
		Title:       orDefault(raw.Title, DefaultTitle),
		Company:     orDefault(raw.Company, DefaultCompany),
		Location:    orDefault(raw.Location, DefaultLocation),
		Description: TruncateDescription(orDefault(raw.Description, DefaultDescription)),
		URL:         ValidURL(raw.URL),
		Source:      raw.Source,
		Skills:      stringSkills(raw.Skills),
		SalaryMin:   raw.SalaryMin,
		SalaryMax:   raw.SalaryMax,
	}

	if logo := ValidURL(raw.Logo); logo != NoURL {
		job.LogoURL = logo
	} else if job.Company != DefaultCompany {
		job.LogoURL = DeriveLogoURL(job.Company)
	}

	job.SalaryCurrency = strings.ToUpper(strings.TrimSpace(raw.SalaryCurrency))
	if job.SalaryMin == nil && job.SalaryMax == nil {
		if lo, hi, currency, ok := InferSalary(raw.Description); ok {
			job.SalaryMin = &lo
			job.SalaryMax = &hi
			if job.SalaryCurrency == "" {
				job.SalaryCurrency = currency
			}
		}
	}
	if job.SalaryMin == nil && job.SalaryMax == nil {
		job.SalaryCurrency = ""
	}

	job.JobType = NormalizeJobType(raw.JobType)
	if job.JobType == "" {
		job.JobType = InferJobType(raw.Description)
	}

	return job
}

func orDefault(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// stringSkills keeps only non-empty string entries, preserving order.
func stringSkills(raw []any) []string {
	skills := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// TruncateDescription cuts s to MaxDescriptionLen characters and appends an
// ellipsis when it was longer.
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxDescriptionLen {
		return s
	}
	return string(runes[:MaxDescriptionLen]) + "..."
}

// ValidURL returns u when it is an http(s) URL and NoURL otherwise.
func ValidURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return NoURL
}

var companySuffixes = map[string]bool{
	"inc": true, "llc": true, "ltd": true, "limited": true, "gmbh": true,
	"corp": true, "corporation": true, "co": true, "company": true,
	"plc": true, "sa": true, "ag": true, "bv": true,
}

// DeriveLogoURL guesses a logo URL from a company name, e.g. "Acme Inc." ->
// https://logo.clearbit.com/acme.com. Returns "" when no slug can be built.
func DeriveLogoURL(company string) string {
	var slug strings.Builder
	for _, word := range strings.Fields(strings.ToLower(company)) {
		word = strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return r
			}
			return -1
		}, word)
		if word == "" || companySuffixes[word] {
			continue
		}
		slug.WriteString(word)
	}
	if slug.Len() == 0 {
		return ""
	}
	return "https://logo.clearbit.com/" + slug.String() + ".com"
}

var salaryRangeRegex = regexp.MustCompile(`([$€£])\s?(\d[\d,]*(?:\.\d+)?)\s?([kK])?\s?(?:-|–|—|to)\s?[$€£]?\s?(\d[\d,]*(?:\.\d+)?)\s?([kK])?`)

var currencySymbols = map[string]string{"$": "USD", "€": "EUR", "£": "GBP"}

// InferSalary extracts the first salary range written like "$80,000 - $120,000"
// or "€50k–70k" from free text.
func InferSalary(text string) (lo, hi float64, currency string, ok bool) {
	m := salaryRangeRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, "", false
	}
	lo, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
	if err != nil {
		return 0, 0, "", false
	}
	hi, err = strconv.ParseFloat(strings.ReplaceAll(m[4], ",", ""), 64)
	if err != nil {
		return 0, 0, "", false
	}
	// "50-70k" applies the suffix to both ends.
	if m[3] != "" || (m[5] != "" && lo < 1000) {
		lo *= 1000
	}
	if m[5] != "" {
		hi *= 1000
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, currencySymbols[m[1]], true
}

// Canonical job types.
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
	JobTypeTemporary  = "temporary"
)

// NormalizeJobType maps provider spellings such as "FULLTIME", "full_time" or
// "contractor" onto the canonical job types. Unknown values are lowercased.
func NormalizeJobType(s string) string {
	squashed := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
	switch squashed {
	case "":
		return ""
	case "fulltime", "permanent":
		return JobTypeFullTime
	case "parttime":
		return JobTypePartTime
	case "contract", "contractor", "freelance":
		return JobTypeContract
	case "intern", "internship":
		return JobTypeInternship
	case "temporary", "temp":
		return JobTypeTemporary
	}
	return strings.ToLower(strings.TrimSpace(s))
}

var jobTypeHints = []struct {
	pattern *regexp.Regexp
	jobType string
}{
	{regexp.MustCompile(`\bintern(ship)?\b`), JobTypeInternship},
	{regexp.MustCompile(`\bcontract(or)?\b`), JobTypeContract},
	{regexp.MustCompile(`\bpart[- ]time\b`), JobTypePartTime},
	{regexp.MustCompile(`\bfull[- ]time\b`), JobTypeFullTime},
	{regexp.MustCompile(`\btemporary\b`), JobTypeTemporary},
}

// InferJobType looks for job type wording in a description.
func InferJobType(text string) string {
	lower := strings.ToLower(text)
	for _, h := range jobTypeHints {
		if h.pattern.MatchString(lower) {
			return h.jobType
		}
	}
	return ""
}
