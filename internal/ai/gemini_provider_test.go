package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type fakeGenerator struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	for _, c := range contents {
		for _, p := range c.Parts {
			f.prompt += p.Text
		}
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeminiComplete_Success(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(`{"keywords":`, `["go"],"locations":[],"seniority":"mid"}`)}
	p := newGeminiProvider(gen, "")

	got, err := p.Complete(context.Background(), "suggest keywords", enhancementSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"keywords":["go"],"locations":[],"seniority":"mid"}` {
		t.Errorf("got %q", got)
	}
	if gen.model != geminiDefaultModel {
		t.Errorf("model = %q, want %q", gen.model, geminiDefaultModel)
	}
	if gen.config == nil || gen.config.ResponseMIMEType != "application/json" {
		t.Error("expected JSON response mime type")
	}
	if !strings.Contains(gen.prompt, "suggest keywords") || !strings.Contains(gen.prompt, `"seniority"`) {
		t.Errorf("prompt should carry the request and the schema, got %q", gen.prompt)
	}
}

func TestGeminiComplete_Error(t *testing.T) {
	p := newGeminiProvider(&fakeGenerator{err: errors.New("quota")}, "gemini-pro")
	if _, err := p.Complete(context.Background(), "x", scoresSchema); err == nil {
		t.Fatal("expected error from generator")
	}
}

func TestGeminiComplete_EmptyResponse(t *testing.T) {
	p := newGeminiProvider(&fakeGenerator{resp: &genai.GenerateContentResponse{}}, "gemini-pro")
	if _, err := p.Complete(context.Background(), "x", scoresSchema); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), "  ", ""); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
