package domain

import "context"

// GenerateRequest carries everything a provider needs to write a message.
type GenerateRequest struct {
	ClientName string
	Company    string
	Tone       string
	Kind       Kind
	Prompt     string
}

// Provider generates message bodies. Implementations wrap an LLM or, in
// local mode, a canned template.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
