// Package provider contains the adapters that translate a canonical
// generation call into each AI service's request/response shape.
//
// Adapters never let a provider-specific error escape: every failure comes
// back as a *domain.GatewayError of type provider_request so the gateway can
// treat all providers uniformly in its fallback chain.
package provider

import "context"

// Generation parameters are policy constants, not caller-configurable, to
// keep behavior predictable across call sites.
const (
	maxResponseTokens = 2000
	temperature       = 0.7
)

// GenerateRequest is one canonical generation call. The API key travels with
// the request because it can differ per call (user-supplied keys).
type GenerateRequest struct {
	Model        string
	Prompt       string
	SystemPrompt string
	APIKey       string
}

// GenerateResult is the canonical response shape.
type GenerateResult struct {
	Text string

	// Token counts as reported by the provider; zero when not reported.
	PromptTokens     int
	CompletionTokens int
}

// Adapter is the interface every AI service backend must satisfy.
type Adapter interface {
	// Name returns the service identifier, e.g. "google" or "openai".
	Name() string

	// Generate performs one text generation call. The context carries the
	// gateway's per-attempt timeout.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
}
