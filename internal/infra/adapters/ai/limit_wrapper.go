package ai

import (
	"context"

	"classroom-ai-assistant/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.AnalysisAdapter = (*limitedAnalysis)(nil)

// limitedAnalysis caps concurrent calls into the provider; the service
// is externally rate limited and slow calls pile up otherwise.
type limitedAnalysis struct {
	inner adapter.AnalysisAdapter
	sem   chan struct{}
}

func NewLimitedAnalysis(inner adapter.AnalysisAdapter, maxConcurrent int) adapter.AnalysisAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAnalysis{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAnalysis) Analyze(ctx context.Context, prompt string, media map[string]adapter.MediaRef) (map[string]string, adapter.Usage, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, adapter.Usage{}, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Analyze(ctx, prompt, media)
}
