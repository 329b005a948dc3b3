package repository

import (
	"context"

	"classroom-ai-assistant/internal/domain/model"
)

type AnalysisJobRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.AnalysisJob, error)
	Exists(ctx context.Context, tx Tx, id string) (bool, error)

	// CreateIfAbsent is a conditional create against the job's
	// deterministic id: it reports created=false when a job with the
	// same id already exists and writes nothing. This closes the
	// check-then-create race at the store.
	CreateIfAbsent(ctx context.Context, tx Tx, job *model.AnalysisJob) (created bool, err error)

	Save(ctx context.Context, tx Tx, job *model.AnalysisJob) error

	// FetchAndMarkProcessing atomically fetches one pending job and marks
	// it processing so no other worker picks it up.
	FetchAndMarkProcessing(ctx context.Context) (*model.AnalysisJob, error)
}
