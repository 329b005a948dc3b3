package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
)

var _ repository.PerformanceMetricRepository = (*performanceMetricRepo)(nil)

type performanceMetricRepo struct {
	pool *pgxpool.Pool
}

func NewPerformanceMetricRepo(pool *pgxpool.Pool) *performanceMetricRepo {
	return &performanceMetricRepo{pool: pool}
}

func (r *performanceMetricRepo) FindOpen(ctx context.Context, tx repository.Tx, studentUID, classID string) (*model.PerformanceMetric, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	// ULID ids are time-ordered, so the max id is the most recent record.
	const q = `
SELECT id, student_uid, class_id, task_name, start_time, end_time, duration, status
FROM performance_metrics
WHERE student_uid=$1 AND class_id=$2 AND status='in-progress'
ORDER BY id DESC
LIMIT 1;`
	var m model.PerformanceMetric
	var statusStr string
	err = ex.QueryRow(ctx, q, studentUID, classID).Scan(
		&m.ID, &m.StudentUID, &m.ClassID, &m.TaskName, &m.StartTime, &m.EndTime, &m.Duration, &statusStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	m.Status = model.PerformanceMetricStatus(statusStr)
	return &m, nil
}

func (r *performanceMetricRepo) Save(ctx context.Context, tx repository.Tx, metric *model.PerformanceMetric) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO performance_metrics (id, student_uid, class_id, task_name, start_time, end_time, duration, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  end_time = EXCLUDED.end_time,
  duration = EXCLUDED.duration,
  status = EXCLUDED.status;`
	_, err = ex.Exec(ctx, q, metric.ID, metric.StudentUID, metric.ClassID, metric.TaskName,
		metric.StartTime, metric.EndTime, metric.Duration, string(metric.Status))
	return err
}
