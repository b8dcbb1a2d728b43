// Package provider contains Provider implementations. Only the canned
// template provider ships; real LLM providers plug in behind the same
// interface.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/draftwise/draftwise/internal/drafting/domain"
)

var openings = map[domain.Kind]string{
	domain.KindEmail:    "I hope this finds you well.",
	domain.KindFollowUp: "I wanted to follow up on my earlier message.",
	domain.KindProposal: "Thank you for the opportunity to put together a proposal.",
	domain.KindPitch:    "I have an idea I think would be a great fit for you.",
}

// CannedProvider generates deterministic template drafts for local mode.
type CannedProvider struct{}

// NewCannedProvider creates a provider.
func NewCannedProvider() *CannedProvider {
	return &CannedProvider{}
}

// Generate renders a template from the request.
func (p *CannedProvider) Generate(_ context.Context, req domain.GenerateRequest) (string, error) {
	firstName := req.ClientName
	if i := strings.IndexByte(firstName, ' '); i > 0 {
		firstName = firstName[:i]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", firstName)
	b.WriteString(openings[req.Kind])
	fmt.Fprintf(&b, "\n\n%s\n\n", req.Prompt)
	switch req.Tone {
	case "friendly", "casual":
		b.WriteString("Cheers")
	default:
		b.WriteString("Best regards")
	}
	return b.String(), nil
}
