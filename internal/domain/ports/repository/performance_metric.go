package repository

import (
	"context"

	"classroom-ai-assistant/internal/domain/model"
)

type PerformanceMetricRepository interface {
	// FindOpen returns the most recent in-progress metric for the
	// student in the class, or domain.ErrNotFound.
	FindOpen(ctx context.Context, tx Tx, studentUID, classID string) (*model.PerformanceMetric, error)

	Save(ctx context.Context, tx Tx, metric *model.PerformanceMetric) error
}
