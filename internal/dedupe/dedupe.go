// Package dedupe collapses postings that several providers returned for the
// same job.
package dedupe

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/amishk599/jobsearch/internal/model"
)

// Dedupe removes duplicate postings, keeping the first occurrence and the
// relative order of the rest. Postings without a usable company or title
// are dropped.
func Dedupe(jobs []model.Job) []model.Job {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		key, ok := Key(j)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, j)
	}
	return out
}

// Key returns "{company}_{title}_{url}" built from the normalized fields.
// ok is false when company or title normalizes to nothing.
func Key(j model.Job) (key string, ok bool) {
	company := NormalizeText(j.Company)
	title := NormalizeText(j.Title)
	if company == "" || title == "" {
		return "", false
	}
	return company + "_" + title + "_" + NormalizeURL(j.URL), true
}

// NormalizeText lowercases s and keeps only letters, digits and whitespace.
func NormalizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}

// NormalizeURL reduces a URL to host+path without query, fragment or
// trailing slash. The NoURL sentinel and empty strings yield "".
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == model.NoURL {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			raw = raw[:i]
		}
		return strings.TrimRight(raw, "/")
	}
	return strings.ToLower(u.Host) + strings.TrimRight(u.Path, "/")
}
