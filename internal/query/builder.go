// Package query turns a candidate's skills (or an explicit free-text query)
// into the search phrase sent to every provider.
package query

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultTitle is used when no skill maps to a more specific title, and as
// the whole phrase when the request carries neither skills nor a query.
const DefaultTitle = "software engineer"

// SkillTitles maps a lowercase skill to the job title searched for it.
// Order matters only for readability; lookup is by the request's skill order.
var SkillTitles = []struct {
	Skill string
	Title string
}{
	{"python", "backend developer"},
	{"django", "backend developer"},
	{"flask", "backend developer"},
	{"go", "backend developer"},
	{"golang", "backend developer"},
	{"node", "backend developer"},
	{"node.js", "backend developer"},
	{"nodejs", "backend developer"},
	{"ruby", "backend developer"},
	{"php", "backend developer"},
	{"javascript", "frontend developer"},
	{"typescript", "frontend developer"},
	{"react", "frontend developer"},
	{"vue", "frontend developer"},
	{"angular", "frontend developer"},
	{"html", "frontend developer"},
	{"css", "frontend developer"},
	{"swift", "ios developer"},
	{"kotlin", "android developer"},
	{"flutter", "mobile developer"},
	{"react native", "mobile developer"},
	{"sql", "data analyst"},
	{"tableau", "data analyst"},
	{"pandas", "data scientist"},
	{"machine learning", "machine learning engineer"},
	{"tensorflow", "machine learning engineer"},
	{"pytorch", "machine learning engineer"},
	{"aws", "cloud engineer"},
	{"azure", "cloud engineer"},
	{"gcp", "cloud engineer"},
	{"docker", "devops engineer"},
	{"kubernetes", "devops engineer"},
	{"terraform", "devops engineer"},
	{"figma", "ui ux designer"},
}

var titleBySkill = func() map[string]string {
	m := make(map[string]string, len(SkillTitles))
	for _, st := range SkillTitles {
		m[st.Skill] = st.Title
	}
	return m
}()

// Enhancement is the optional result of asking a text-generation service to
// interpret a skill list.
type Enhancement struct {
	Keywords  []string `json:"keywords"`
	Locations []string `json:"locations"`
	Seniority string   `json:"seniority"`
}

// Enhancer maps skills to search hints. Implementations may fail; the
// builder never depends on them.
type Enhancer interface {
	Enhance(ctx context.Context, skills []string) (*Enhancement, error)
}

// Plan is the result of building a query.
type Plan struct {
	Phrase      string
	Location    string // first location suggested by the enhancer, if any
	Enhancement *Enhancement
}

// Builder builds search phrases. The enhancer may be nil.
type Builder struct {
	enhancer Enhancer
	logger   *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(enhancer Enhancer, logger *slog.Logger) *Builder {
	return &Builder{enhancer: enhancer, logger: logger}
}

// Build returns the search plan for a request. The phrase is never empty.
func (b *Builder) Build(ctx context.Context, skills []string, freeText string) Plan {
	if q := strings.TrimSpace(freeText); q != "" {
		return Plan{Phrase: q}
	}

	skills = cleanSkills(skills)
	if len(skills) == 0 {
		return Plan{Phrase: DefaultTitle}
	}

	plan := Plan{Phrase: HeuristicPhrase(skills)}
	if enh := b.enhance(ctx, skills); enh != nil {
		plan.Enhancement = enh
		for _, loc := range enh.Locations {
			if loc = strings.TrimSpace(loc); loc != "" {
				plan.Location = loc
				break
			}
		}
	}
	return plan
}

// enhance calls the enhancer, swallowing errors and panics.
func (b *Builder) enhance(ctx context.Context, skills []string) (enh *Enhancement) {
	if b.enhancer == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("query enhancement panicked", "panic", r)
			enh = nil
		}
	}()

	enh, err := b.enhancer.Enhance(ctx, skills)
	if err != nil {
		b.logger.Debug("query enhancement unavailable", "error", err)
		return nil
	}
	if enh != nil {
		b.logger.Debug("query enhanced",
			"keywords", enh.Keywords,
			"locations", enh.Locations,
			"seniority", enh.Seniority,
		)
	}
	return enh
}

// HeuristicPhrase builds "{title} {topSkill}" where title comes from the
// first skill present in SkillTitles.
func HeuristicPhrase(skills []string) string {
	skills = cleanSkills(skills)
	if len(skills) == 0 {
		return DefaultTitle
	}
	title := DefaultTitle
	for _, s := range skills {
		if t, ok := titleBySkill[strings.ToLower(s)]; ok {
			title = t
			break
		}
	}
	return title + " " + skills[0]
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
