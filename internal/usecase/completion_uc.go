package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
	"classroom-ai-assistant/internal/infra/logging"
)

// Compile-time check
var _ CompletionUseCase = (*completionUC)(nil)

// CompletionUseCase reacts to capture-job status changes and dispatches
// the session's analysis job exactly once when every student's job has
// reached a terminal state.
type CompletionUseCase interface {
	// HandleStatusChange inspects one observed transition and returns
	// the analysis job created by this invocation, or nil when the
	// transition did not complete the session.
	HandleStatusChange(ctx context.Context, before, after *model.VideoJob) (*model.AnalysisJob, error)
}

type completionUC struct {
	videoJobs    repository.VideoJobRepository
	analysisJobs repository.AnalysisJobRepository
	classes      repository.ClassConfigRepository
	log          *zerolog.Logger
}

func NewCompletionUseCase(
	videoJobs repository.VideoJobRepository,
	analysisJobs repository.AnalysisJobRepository,
	classes repository.ClassConfigRepository,
	logger *zerolog.Logger,
) *completionUC {
	l := logger.With().Str("component", "CompletionUC").Logger()
	return &completionUC{videoJobs: videoJobs, analysisJobs: analysisJobs, classes: classes, log: &l}
}

func (c *completionUC) HandleStatusChange(ctx context.Context, before, after *model.VideoJob) (*model.AnalysisJob, error) {
	defer logging.TraceDuration(c.log, "CompletionUC.HandleStatusChange")()

	if after == nil {
		return nil, domain.ErrInvalidArgument
	}
	var prev model.VideoJobStatus
	if before != nil {
		prev = before.Status
	}
	// Only a transition into a terminal state from a non-terminal one
	// counts; duplicate deliveries and terminal->terminal are ignored.
	if !model.EnteredTerminal(prev, after.Status) {
		return nil, nil
	}
	if !after.HasSessionKey() {
		c.log.Debug().Str("job_id", after.ID).Msg("terminal job without session key, skipping")
		return nil, nil
	}

	class, err := c.classes.FindByID(ctx, repository.NoTX, after.ClassID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.log.Warn().Str("class_id", after.ClassID).Msg("class not found, skipping dispatch")
			return nil, nil
		}
		return nil, err
	}
	if !class.AutomaticCombine || class.AfterClassVideoPrompt == "" {
		return nil, nil
	}
	total := class.TotalStudents()
	if total == 0 {
		return nil, nil
	}

	finished, err := c.videoJobs.CountTerminalBySession(ctx, repository.NoTX, after.ClassID, after.StartTime, after.EndTime)
	if err != nil {
		return nil, err
	}
	if finished < total {
		c.log.Debug().
			Str("class_id", after.ClassID).
			Int("finished", finished).
			Int("total", total).
			Msg("session still in flight")
		return nil, nil
	}

	jobID := model.AnalysisJobID(after.ClassID, after.StartTime)
	exists, err := c.analysisJobs.Exists(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	if exists {
		c.log.Debug().Str("analysis_job_id", jobID).Msg("analysis job already dispatched")
		return nil, nil
	}

	job := model.NewAutomaticAnalysisJob(after.ClassID, after.StartTime, after.EndTime, class.AfterClassVideoPrompt)
	created, err := c.analysisJobs.CreateIfAbsent(ctx, repository.NoTX, job)
	if err != nil {
		return nil, err
	}
	if !created {
		// A concurrent trigger won the race between the existence check
		// and the write; the conditional create makes that a no-op.
		c.log.Info().Str("analysis_job_id", jobID).Msg("dedup hit on conditional create")
		return nil, nil
	}

	c.log.Info().
		Str("analysis_job_id", jobID).
		Str("class_id", after.ClassID).
		Int("students", total).
		Msg("analysis job dispatched")
	return job, nil
}
