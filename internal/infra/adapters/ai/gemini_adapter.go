package ai

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"

	"classroom-ai-assistant/internal/domain/ports/adapter"
	"classroom-ai-assistant/internal/infra/metrics"
)

var _ adapter.AnalysisAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client *genai.Client
	model  string
	maxOut int
}

// NewGeminiAdapter creates the analysis adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model, maxOut: maxOut}, nil
}

// Analyze runs one generation per labeled media reference and collects
// the per-label text. Labels are processed in sorted order so partial
// failures are reproducible.
func (g *GeminiAdapter) Analyze(ctx context.Context, prompt string, media map[string]adapter.MediaRef) (map[string]string, adapter.Usage, error) {
	if prompt == "" {
		return nil, adapter.Usage{}, errors.New("gemini: empty prompt")
	}
	if len(media) == 0 {
		return nil, adapter.Usage{}, errors.New("gemini: no media")
	}

	labels := make([]string, 0, len(media))
	for label := range media {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make(map[string]string, len(labels))
	var usage adapter.Usage
	for _, label := range labels {
		ref := media[label]
		contents := []*genai.Content{{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{FileData: &genai.FileData{FileURI: ref.URI, MIMEType: ref.MIMEType}},
				{Text: prompt},
			},
		}}
		callStart := time.Now()
		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
			MaxOutputTokens: int32(g.maxOut),
		})
		metrics.ObserveAILatency(time.Since(callStart))
		if err != nil {
			return nil, usage, err
		}
		out[label] = firstCandidateText(resp)
		if resp != nil && resp.UsageMetadata != nil {
			usage.PromptTokens += int(resp.UsageMetadata.PromptTokenCount)
			usage.CompletionTokens += int(resp.UsageMetadata.CandidatesTokenCount)
			usage.TotalTokens += int(resp.UsageMetadata.TotalTokenCount)
			metrics.AddAITokens(int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount))
		}
	}
	return out, usage, nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
