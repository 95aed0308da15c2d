// Package llm provides a minimal chat-completion client for the self-hosted
// LLM gateway used by the validation pipeline.
//
// The gateway speaks the OpenAI chat-completions protocol, so the production
// implementation is a thin wrapper around the OpenAI SDK pointed at a custom
// base URL. Deployments with self-signed certificates can opt into skipping
// TLS verification via configuration.
package llm

import "context"

// Client sends a prompt to a language model and returns the raw text of the
// first completion choice.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
