package filter

import (
	"strings"

	"github.com/amishk599/jobsearch/internal/model"
)

// KeywordFilter drops watch-mode matches the user never wants to hear about.
// A job is rejected when its title or company contains any exclude keyword,
// or when location keywords are set and none appears in its location.
// Matching is case-insensitive substring.
type KeywordFilter struct {
	exclude   []string
	locations []string
}

// NewKeywordFilter lowercases and drops blank keywords up front.
func NewKeywordFilter(exclude, locations []string) *KeywordFilter {
	return &KeywordFilter{
		exclude:   lowerAll(exclude),
		locations: lowerAll(locations),
	}
}

// Match reports whether job passes the filter.
func (f *KeywordFilter) Match(job model.Job) bool {
	title := strings.ToLower(job.Title)
	company := strings.ToLower(job.Company)
	for _, kw := range f.exclude {
		if strings.Contains(title, kw) || strings.Contains(company, kw) {
			return false
		}
	}

	if len(f.locations) == 0 {
		return true
	}
	location := strings.ToLower(job.Location)
	for _, loc := range f.locations {
		if strings.Contains(location, loc) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
