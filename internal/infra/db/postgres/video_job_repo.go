package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
)

var _ repository.VideoJobRepository = (*videoJobRepo)(nil)

type videoJobRepo struct {
	pool *pgxpool.Pool
}

func NewVideoJobRepo(pool *pgxpool.Pool) *videoJobRepo {
	return &videoJobRepo{pool: pool}
}

const videoJobColumns = `id, class_id, student_email, status, media_path, started_at, start_time, end_time, finished_at, error`

func scanVideoJob(row pgx.Row) (*model.VideoJob, error) {
	var j model.VideoJob
	var statusStr string
	err := row.Scan(&j.ID, &j.ClassID, &j.StudentEmail, &statusStr, &j.MediaPath,
		&j.StartedAt, &j.StartTime, &j.EndTime, &j.FinishedAt, &j.Error)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	j.Status = model.VideoJobStatus(statusStr)
	return &j, nil
}

func (r *videoJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.VideoJob, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + videoJobColumns + ` FROM video_jobs WHERE id=$1;`
	return scanVideoJob(ex.QueryRow(ctx, q, id))
}

func (r *videoJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.VideoJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO video_jobs (` + videoJobColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  media_path = EXCLUDED.media_path,
  finished_at = EXCLUDED.finished_at,
  error = EXCLUDED.error;`
	_, err = ex.Exec(ctx, q, job.ID, job.ClassID, job.StudentEmail, string(job.Status), job.MediaPath,
		job.StartedAt, job.StartTime, job.EndTime, job.FinishedAt, job.Error)
	return err
}

func (r *videoJobRepo) FindBySession(ctx context.Context, tx repository.Tx, classID string, startTime, endTime time.Time) ([]*model.VideoJob, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	// Strict equality on both bounds; that is the session contract.
	const q = `SELECT ` + videoJobColumns + `
FROM video_jobs WHERE class_id=$1 AND start_time=$2 AND end_time=$3;`
	rows, err := ex.Query(ctx, q, classID, startTime, endTime)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVideoJobs(rows)
}

func (r *videoJobRepo) CountTerminalBySession(ctx context.Context, tx repository.Tx, classID string, startTime, endTime time.Time) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const q = `
SELECT COUNT(*) FROM video_jobs
WHERE class_id=$1 AND start_time=$2 AND end_time=$3 AND status IN ('completed','failed');`
	var n int
	if err := ex.QueryRow(ctx, q, classID, startTime, endTime).Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *videoJobRepo) FindStuck(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.VideoJob, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + videoJobColumns + `
FROM video_jobs WHERE status='processing' AND started_at < $1;`
	rows, err := ex.Query(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVideoJobs(rows)
}

// MarkFailed flips jobs to failed in batches below the per-batch
// mutation ceiling. A crash mid-sweep is safe: rows already flipped no
// longer match the stuck predicate on the next run.
func (r *videoJobRepo) MarkFailed(ctx context.Context, jobs []*model.VideoJob, finishedAt time.Time, reason string) (int, error) {
	const q = `
UPDATE video_jobs SET status='failed', finished_at=$2, error=$3
WHERE id=$1 AND status='processing';`

	written := 0
	for _, part := range chunk(jobs, maxBatchMutations) {
		batch := &pgx.Batch{}
		for _, j := range part {
			batch.Queue(q, j.ID, finishedAt, reason)
		}
		br := r.pool.SendBatch(ctx, batch)
		for range part {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return written, err
			}
			written += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return written, err
		}
	}

	for _, j := range jobs {
		j.Status = model.VideoJobStatusFailed
		j.FinishedAt = finishedAt
		j.Error = reason
	}
	return written, nil
}

func collectVideoJobs(rows pgx.Rows) ([]*model.VideoJob, error) {
	var out []*model.VideoJob
	for rows.Next() {
		j, err := scanVideoJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
