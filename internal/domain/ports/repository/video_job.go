package repository

import (
	"context"
	"time"

	"classroom-ai-assistant/internal/domain/model"
)

type VideoJobRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.VideoJob, error)
	Save(ctx context.Context, tx Tx, job *model.VideoJob) error

	// FindBySession returns the jobs sharing the exact (classID,
	// startTime, endTime) triple. Grouping is strict equality on both
	// bounds; jobs with skewed bounds form their own session.
	FindBySession(ctx context.Context, tx Tx, classID string, startTime, endTime time.Time) ([]*model.VideoJob, error)

	// CountTerminalBySession counts session jobs whose status is terminal.
	CountTerminalBySession(ctx context.Context, tx Tx, classID string, startTime, endTime time.Time) (int, error)

	// FindStuck returns jobs still processing whose StartedAt is before
	// the cutoff.
	FindStuck(ctx context.Context, tx Tx, cutoff time.Time) ([]*model.VideoJob, error)

	// MarkFailed flips the given jobs to failed with the diagnostic
	// reason, batching writes below the store's per-batch mutation
	// ceiling. Returns the number of jobs written.
	MarkFailed(ctx context.Context, jobs []*model.VideoJob, finishedAt time.Time, reason string) (int, error)
}
