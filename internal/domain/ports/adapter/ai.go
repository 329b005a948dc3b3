package adapter

import "context"

// MediaRef points at one stored capture artifact.
type MediaRef struct {
	URI      string
	MIMEType string
}

// Usage for a single analysis call, as reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AnalysisAdapter is the port for the generative-analysis service:
// given labeled media and a prompt it returns per-label analysis text.
// The call is opaque, potentially slow and externally rate limited.
type AnalysisAdapter interface {
	Analyze(ctx context.Context, prompt string, media map[string]MediaRef) (map[string]string, Usage, error)
}
