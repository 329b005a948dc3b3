package usecase

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ TaskTimerUseCase = (*taskTimerUC)(nil)

// TaskTimerUseCase maintains running per-task timers: each new
// observation of a student's current task closes the previous open
// interval and opens a new one. Exactly one metric per
// (studentUid, classId) is in-progress at any instant.
type TaskTimerUseCase interface {
	ObserveTask(ctx context.Context, obs model.TaskObservation) error
}

type taskTimerUC struct {
	metrics repository.PerformanceMetricRepository
	log     *zerolog.Logger
}

func NewTaskTimerUseCase(metrics repository.PerformanceMetricRepository, logger *zerolog.Logger) *taskTimerUC {
	l := logger.With().Str("component", "TaskTimerUC").Logger()
	return &taskTimerUC{metrics: metrics, log: &l}
}

func (t *taskTimerUC) ObserveTask(ctx context.Context, obs model.TaskObservation) error {
	if obs.StudentUID == "" || obs.ClassID == "" || obs.CurrentTask == "" || obs.Timestamp.IsZero() {
		return domain.ErrInvalidArgument
	}

	open, err := t.metrics.FindOpen(ctx, repository.NoTX, obs.StudentUID, obs.ClassID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		open = nil
	case err != nil:
		return err
	}

	if open != nil {
		if open.TaskName == obs.CurrentTask {
			// Same task continues.
			return nil
		}
		open.Close(obs.Timestamp)
		if err := t.metrics.Save(ctx, repository.NoTX, open); err != nil {
			return err
		}
		t.log.Debug().
			Str("student_uid", obs.StudentUID).
			Str("task", open.TaskName).
			Int64("duration_s", open.Duration).
			Msg("task interval closed")
	}

	next := model.NewPerformanceMetric(ulid.Make().String(), obs.StudentUID, obs.ClassID, obs.CurrentTask, obs.Timestamp)
	return t.metrics.Save(ctx, repository.NoTX, next)
}
