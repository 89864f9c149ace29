package filter

import (
	"testing"

	"github.com/amishk599/jobsearch/internal/model"
)

func job(title, company, location string) model.Job {
	return model.Job{Title: title, Company: company, Location: location}
}

func TestKeywordFilter_Match(t *testing.T) {
	tests := []struct {
		name      string
		exclude   []string
		locations []string
		job       model.Job
		wantMatch bool
	}{
		{
			name:      "empty filter passes everything",
			job:       job("Go Developer", "Acme", "Berlin"),
			wantMatch: true,
		},
		{
			name:      "excluded keyword in title",
			exclude:   []string{"senior", "staff"},
			job:       job("Staff Software Engineer", "Acme", "Remote"),
			wantMatch: false,
		},
		{
			name:      "excluded keyword in company",
			exclude:   []string{"Recruiting"},
			job:       job("Go Developer", "Best Recruiting Ltd", "Remote"),
			wantMatch: false,
		},
		{
			name:      "location keyword matches case-insensitively",
			locations: []string{"remote", "GERMANY"},
			job:       job("Go Developer", "Acme", "Munich, Germany"),
			wantMatch: true,
		},
		{
			name:      "location keyword misses",
			locations: []string{"remote"},
			job:       job("Go Developer", "Acme", "London, UK"),
			wantMatch: false,
		},
		{
			name:      "blank keywords are ignored",
			exclude:   []string{"  ", ""},
			locations: []string{" "},
			job:       job("Go Developer", "Acme", "Paris"),
			wantMatch: true,
		},
		{
			name:      "exclude wins over location match",
			exclude:   []string{"intern"},
			locations: []string{"remote"},
			job:       job("Software Intern", "Acme", "Remote"),
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewKeywordFilter(tt.exclude, tt.locations)
			if got := f.Match(tt.job); got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}
