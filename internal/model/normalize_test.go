package model

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalize_AppliesDefaults(t *testing.T) {
	job := Normalize(RawJob{
		ProviderTag: "remotive",
		EngineTag:   "free",
		Title:       "   ",
		URL:         "javascript:alert(1)",
		Skills:      []any{"Go", 42, "", " SQL ", nil},
	})

	if job.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", job.Title, DefaultTitle)
	}
	if job.Company != DefaultCompany {
		t.Errorf("Company = %q, want %q", job.Company, DefaultCompany)
	}
	if job.Location != DefaultLocation {
		t.Errorf("Location = %q, want %q", job.Location, DefaultLocation)
	}
	if job.Description != DefaultDescription {
		t.Errorf("Description = %q, want %q", job.Description, DefaultDescription)
	}
	if job.URL != NoURL {
		t.Errorf("URL = %q, want %q", job.URL, NoURL)
	}
	if job.LogoURL != "" {
		t.Errorf("LogoURL = %q, want empty for unknown company", job.LogoURL)
	}
	if len(job.Skills) != 2 || job.Skills[0] != "Go" || job.Skills[1] != "SQL" {
		t.Errorf("Skills = %v, want [Go SQL]", job.Skills)
	}
	if !strings.HasPrefix(job.ID, "remotive-free-") || len(job.ID) <= len("remotive-free-") {
		t.Errorf("ID = %q, want remotive-free-<uuid>", job.ID)
	}
	if job.MatchScore != nil {
		t.Error("MatchScore must be unset before ranking")
	}
}

func TestNormalize_KeepsProviderValues(t *testing.T) {
	lo, hi := 90000.0, 120000.0
	job := Normalize(RawJob{
		ProviderTag:    "metasearch",
		EngineTag:      "linkedin",
		NativeID:       "abc",
		Source:         "linkedin",
		Title:          "Backend Engineer",
		Company:        "Acme Inc.",
		Location:       "Berlin, DE",
		Description:    "Build things.",
		URL:            "https://acme.com/jobs/1",
		Logo:           "https://cdn.acme.com/logo.png",
		SalaryMin:      &lo,
		SalaryMax:      &hi,
		SalaryCurrency: "eur",
		JobType:        "FULLTIME",
	})

	if job.ID != "metasearch-linkedin-abc" {
		t.Errorf("ID = %q", job.ID)
	}
	if job.LogoURL != "https://cdn.acme.com/logo.png" {
		t.Errorf("LogoURL = %q, want provider logo", job.LogoURL)
	}
	if job.SalaryCurrency != "EUR" || *job.SalaryMin != lo || *job.SalaryMax != hi {
		t.Errorf("salary = %v-%v %s", *job.SalaryMin, *job.SalaryMax, job.SalaryCurrency)
	}
	if job.JobType != JobTypeFullTime {
		t.Errorf("JobType = %q, want %q", job.JobType, JobTypeFullTime)
	}
}

func TestNormalize_DerivesLogoAndInfersFromDescription(t *testing.T) {
	job := Normalize(RawJob{
		ProviderTag: "remotive",
		EngineTag:   "free",
		NativeID:    "7",
		Company:     "Acme Inc.",
		Description: "Part-time role paying $80,000 - $120,000 per year.",
	})

	if job.LogoURL != "https://logo.clearbit.com/acme.com" {
		t.Errorf("LogoURL = %q", job.LogoURL)
	}
	if job.SalaryMin == nil || *job.SalaryMin != 80000 || *job.SalaryMax != 120000 {
		t.Fatalf("salary not inferred: %+v", job)
	}
	if job.SalaryCurrency != "USD" {
		t.Errorf("SalaryCurrency = %q, want USD", job.SalaryCurrency)
	}
	if job.JobType != JobTypePartTime {
		t.Errorf("JobType = %q, want %q", job.JobType, JobTypePartTime)
	}
}

func TestTruncateDescription(t *testing.T) {
	long := strings.Repeat("é", MaxDescriptionLen+20)
	got := TruncateDescription(long)
	if len([]rune(got)) != MaxDescriptionLen+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncated length = %d runes", len([]rune(got)))
	}

	exact := strings.Repeat("a", MaxDescriptionLen)
	if TruncateDescription(exact) != exact {
		t.Error("description at the limit must not be truncated")
	}
}

func TestInferSalary(t *testing.T) {
	tests := []struct {
		text     string
		lo, hi   float64
		currency string
		ok       bool
	}{
		{"pay: $80,000 - $120,000", 80000, 120000, "USD", true},
		{"€50k–70k plus equity", 50000, 70000, "EUR", true},
		{"£40-60k", 40000, 60000, "GBP", true},
		{"competitive salary", 0, 0, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			lo, hi, currency, ok := InferSalary(tc.text)
			if ok != tc.ok || lo != tc.lo || hi != tc.hi || currency != tc.currency {
				t.Errorf("InferSalary(%q) = %v, %v, %q, %v", tc.text, lo, hi, currency, ok)
			}
		})
	}
}

func TestSearchRequest_Validate(t *testing.T) {
	ok := SearchRequest{Skills: []string{"Go"}, Query: "backend"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	bad := SearchRequest{Skills: []string{strings.Repeat("x", 101)}}
	err := bad.Validate()
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Validate() = %v, want ErrInvalidRequest", err)
	}
}
