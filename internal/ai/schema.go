package ai

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names a JSON Schema sent with a completion request and used to
// validate the answer.
type Schema struct {
	Name string
	Body map[string]any
}

var enhancementSchema = Schema{
	Name: "query_enhancement",
	Body: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"keywords": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"locations": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"seniority": map[string]any{
				"type": "string",
				"enum": []string{"intern", "junior", "mid", "senior", "lead", "unknown"},
			},
		},
		"required": []string{"keywords", "locations", "seniority"},
	},
}

var scoresSchema = Schema{
	Name: "relevance_scores",
	Body: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"scores": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"id":    map[string]any{"type": "string"},
						"score": map[string]any{"type": "number"},
					},
					"required": []string{"id", "score"},
				},
			},
		},
		"required": []string{"scores"},
	},
}

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation in an LLM answer.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("%s: response does not match schema: %s", e.Schema, strings.Join(parts, "; "))
}

// validateJSON checks raw against schema.
func validateJSON(schema Schema, raw string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema.Body),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("%s: validate response: %w", schema.Name, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: schema.Name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}

// stripCodeFence removes a surrounding ```json fence some models add even
// when asked for bare JSON.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
