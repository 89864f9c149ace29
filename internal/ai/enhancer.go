package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/amishk599/jobsearch/internal/query"
)

// QueryEnhancer implements query.Enhancer using an LLM.
type QueryEnhancer struct {
	provider LLMProvider
	tmpl     *template.Template
}

// NewQueryEnhancer creates an enhancer that asks the LLM for search hints.
func NewQueryEnhancer(provider LLMProvider, tmpl *template.Template) *QueryEnhancer {
	return &QueryEnhancer{provider: provider, tmpl: tmpl}
}

// Enhance maps skills to keywords, locations and a seniority level.
func (e *QueryEnhancer) Enhance(ctx context.Context, skills []string) (*query.Enhancement, error) {
	var promptBuf bytes.Buffer
	if err := e.tmpl.Execute(&promptBuf, struct{ Skills []string }{Skills: skills}); err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := e.provider.Complete(ctx, promptBuf.String(), enhancementSchema)
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}

	raw = stripCodeFence(raw)
	if err := validateJSON(enhancementSchema, raw); err != nil {
		return nil, err
	}

	var enh query.Enhancement
	if err := json.Unmarshal([]byte(raw), &enh); err != nil {
		return nil, fmt.Errorf("unmarshal enhancement JSON: %w", err)
	}
	return &enh, nil
}
