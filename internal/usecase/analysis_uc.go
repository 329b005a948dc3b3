package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/adapter"
	"classroom-ai-assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ AnalysisRunUseCase = (*analysisRunUC)(nil)

// AnalysisRunUseCase drains pending analysis jobs: it resolves the
// session's capture media, invokes the generative-analysis service and
// records per-student results plus the job's cost.
type AnalysisRunUseCase interface {
	// ProcessOne handles at most one pending job and reports whether
	// one was found.
	ProcessOne(ctx context.Context) (bool, error)
}

type analysisRunUC struct {
	jobs      repository.AnalysisJobRepository
	videoJobs repository.VideoJobRepository
	usage     UsageUseCase
	ai        adapter.AnalysisAdapter
	blobs     adapter.ObjectStorage
	// costPerKTokens converts total tokens into ledger cost units.
	costPerKTokens float64
	log            *zerolog.Logger
}

func NewAnalysisRunUseCase(
	jobs repository.AnalysisJobRepository,
	videoJobs repository.VideoJobRepository,
	usage UsageUseCase,
	ai adapter.AnalysisAdapter,
	blobs adapter.ObjectStorage,
	costPerKTokens float64,
	logger *zerolog.Logger,
) *analysisRunUC {
	l := logger.With().Str("component", "AnalysisRunUC").Logger()
	return &analysisRunUC{
		jobs:           jobs,
		videoJobs:      videoJobs,
		usage:          usage,
		ai:             ai,
		blobs:          blobs,
		costPerKTokens: costPerKTokens,
		log:            &l,
	}
}

func (a *analysisRunUC) ProcessOne(ctx context.Context) (bool, error) {
	job, err := a.jobs.FetchAndMarkProcessing(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	start := time.Now()
	err = a.runJob(ctx, job)
	if err != nil {
		job.Status = model.AnalysisJobStatusFailed
		job.LastError = err.Error()
		if saveErr := a.jobs.Save(ctx, repository.NoTX, job); saveErr != nil {
			a.log.Error().Err(saveErr).Str("job_id", job.ID).Msg("failed to persist failed analysis job")
		}
		return true, err
	}

	a.log.Info().
		Str("job_id", job.ID).
		Str("class_id", job.ClassID).
		Int("results", len(job.Results)).
		Dur("elapsed", time.Since(start)).
		Msg("analysis job completed")
	return true, nil
}

func (a *analysisRunUC) runJob(ctx context.Context, job *model.AnalysisJob) error {
	sessionJobs, err := a.videoJobs.FindBySession(ctx, repository.NoTX, job.ClassID, job.StartTime, job.EndTime)
	if err != nil {
		return err
	}

	media := make(map[string]adapter.MediaRef)
	for _, vj := range sessionJobs {
		if vj.Status != model.VideoJobStatusCompleted || vj.MediaPath == "" {
			continue
		}
		if ok, err := a.blobs.Exists(ctx, vj.MediaPath); err == nil && !ok {
			a.log.Warn().Str("job_id", job.ID).Str("path", vj.MediaPath).Msg("capture blob missing, skipped")
			continue
		}
		media[model.NormalizeEmail(vj.StudentEmail)] = adapter.MediaRef{
			URI:      vj.MediaPath,
			MIMEType: "video/mp4",
		}
	}
	if len(media) == 0 {
		return errors.New("no completed capture media for session")
	}

	results, usage, err := a.ai.Analyze(ctx, job.Prompt, media)
	if err != nil {
		return err
	}

	tokens := usage.TotalTokens
	if tokens == 0 {
		tokens = estimatePromptTokens(job.Prompt) * len(media)
	}
	job.Results = results
	job.Cost = float64(tokens) / 1000 * a.costPerKTokens
	job.Status = model.AnalysisJobStatusCompleted
	job.LastError = ""
	if err := a.jobs.Save(ctx, repository.NoTX, job); err != nil {
		return err
	}

	if err := a.usage.RecordJobCost(ctx, job.ClassID, job.Cost); err != nil {
		// The job itself succeeded; a lost increment is logged, not fatal.
		a.log.Error().Err(err).Str("job_id", job.ID).Msg("usage increment failed")
	}

	// Blob cleanup is best-effort and never blocks the record update.
	for label, ref := range media {
		if err := a.blobs.Delete(ctx, ref.URI); err != nil {
			a.log.Warn().Err(err).Str("label", label).Str("path", ref.URI).Msg("capture blob delete failed")
		}
	}
	return nil
}

// estimatePromptTokens is the fallback when the provider reports no
// usage. cl100k_base over-counts slightly for Gemini but is close
// enough for ledger purposes.
func estimatePromptTokens(prompt string) int {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return len(prompt) / 4
	}
	return len(enc.Encode(prompt, nil, nil))
}
