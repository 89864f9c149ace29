package adapter

import (
	"encoding/json"
	"html"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobsearch/internal/model"
)

// extractText converts an HTML or HTML-encoded string to plain text.
// Entities are unescaped first (some providers double-encode markup), then
// the fragment is parsed and its text nodes joined with whitespace collapsed.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	if !strings.ContainsAny(unescaped, "<>") {
		return strings.Join(strings.Fields(unescaped), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		return strings.Join(strings.Fields(unescaped), " ")
	}
	doc.Find("script, style").Remove()

	var parts []string
	collectText(doc.Find("body"), &parts)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			*parts = append(*parts, c.Text())
			return
		}
		collectText(c, parts)
	})
}

// decodeEach decodes provider records one at a time. A record that does not
// fit T is logged and skipped; the rest of the page is kept.
func decodeEach[T any](records []json.RawMessage, provider string, logger *slog.Logger) []T {
	out := make([]T, 0, len(records))
	for i, rec := range records {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			logger.Warn("skipping undecodable record", "provider", provider, "index", i, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// normalizeEach maps provider records to canonical jobs. A record whose
// mapping panics is skipped so one malformed entry cannot sink the batch.
func normalizeEach[T any](records []T, provider string, logger *slog.Logger, toRaw func(T) model.RawJob) []model.Job {
	jobs := make([]model.Job, 0, len(records))
	for i, rec := range records {
		job, ok := normalizeOne(rec, toRaw)
		if !ok {
			logger.Warn("skipping malformed record", "provider", provider, "index", i)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func normalizeOne[T any](rec T, toRaw func(T) model.RawJob) (job model.Job, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return model.Normalize(toRaw(rec)), true
}
