package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/query_enhancement.md
var queryEnhancementPromptRaw string

//go:embed prompts/relevance_scoring.md
var relevanceScoringPromptRaw string

// QueryEnhancementTemplate renders the skills-to-search-hints prompt.
var QueryEnhancementTemplate = template.Must(template.New("query_enhancement").Parse(queryEnhancementPromptRaw))

// RelevanceScoringTemplate renders one scoring batch.
var RelevanceScoringTemplate = template.Must(template.New("relevance_scoring").Parse(relevanceScoringPromptRaw))
