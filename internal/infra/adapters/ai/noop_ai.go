package ai

import (
	"context"

	"classroom-ai-assistant/internal/domain/ports/adapter"
)

var _ adapter.AnalysisAdapter = (*NoopAnalysis)(nil)

// NoopAnalysis is the dev-mode stand-in: it echoes a fixed line per
// label without calling any provider.
type NoopAnalysis struct{}

func NewNoopAnalysis() *NoopAnalysis { return &NoopAnalysis{} }

func (n *NoopAnalysis) Analyze(ctx context.Context, prompt string, media map[string]adapter.MediaRef) (map[string]string, adapter.Usage, error) {
	out := make(map[string]string, len(media))
	for label := range media {
		out[label] = "noop analysis"
	}
	return out, adapter.Usage{}, nil
}
