package ai

import "context"

// LLMProvider sends a prompt to an LLM and returns a JSON document that is
// expected to match schema. Providers with server-side structured output
// enforce the schema; the others only ask for it.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string, schema Schema) (string, error)
}
