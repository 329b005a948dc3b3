package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
	"classroom-ai-assistant/internal/infra/metrics"
)

var _ repository.AnalysisJobRepository = (*analysisJobRepo)(nil)

type analysisJobRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewAnalysisJobRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *analysisJobRepo {
	return &analysisJobRepo{pool: pool, tm: tm}
}

const analysisJobColumns = `id, class_id, requester, start_time, end_time, filter_field, prompt, status, deleted, results, cost, last_error, created_at, updated_at`

func scanAnalysisJob(row pgx.Row) (*model.AnalysisJob, error) {
	var j model.AnalysisJob
	var statusStr string
	var results []byte
	err := row.Scan(&j.ID, &j.ClassID, &j.Requester, &j.StartTime, &j.EndTime, &j.FilterField,
		&j.Prompt, &statusStr, &j.Deleted, &results, &j.Cost, &j.LastError, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	j.Status = model.AnalysisJobStatus(statusStr)
	if len(results) > 0 {
		if err := json.Unmarshal(results, &j.Results); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return &j, nil
}

func (r *analysisJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AnalysisJob, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + analysisJobColumns + ` FROM analysis_jobs WHERE id=$1;`
	return scanAnalysisJob(ex.QueryRow(ctx, q, id))
}

func (r *analysisJobRepo) Exists(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	const q = `SELECT EXISTS (SELECT 1 FROM analysis_jobs WHERE id=$1);`
	var exists bool
	if err := ex.QueryRow(ctx, q, id).Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

// CreateIfAbsent inserts the job against its deterministic id.
// ON CONFLICT DO NOTHING makes concurrent triggers converge on a single
// record without a transaction around check-then-create.
func (r *analysisJobRepo) CreateIfAbsent(ctx context.Context, tx repository.Tx, job *model.AnalysisJob) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	results, err := json.Marshal(job.Results)
	if err != nil {
		return false, err
	}
	const q = `
INSERT INTO analysis_jobs (` + analysisJobColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW(),NOW())
ON CONFLICT (id) DO NOTHING;`
	tag, err := ex.Exec(ctx, q, job.ID, job.ClassID, job.Requester, job.StartTime, job.EndTime,
		job.FilterField, job.Prompt, string(job.Status), job.Deleted, results, job.Cost, job.LastError)
	if err != nil {
		return false, err
	}
	created := tag.RowsAffected() == 1
	if !created {
		metrics.IncAnalysisDedupHit()
	}
	return created, nil
}

func (r *analysisJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.AnalysisJob) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	results, err := json.Marshal(job.Results)
	if err != nil {
		return err
	}
	job.UpdatedAt = time.Now()
	const q = `
UPDATE analysis_jobs SET
  status=$2, deleted=$3, results=$4, cost=$5, last_error=$6, updated_at=$7
WHERE id=$1;`
	_, err = ex.Exec(ctx, q, job.ID, string(job.Status), job.Deleted, results, job.Cost, job.LastError, job.UpdatedAt)
	return err
}

func (r *analysisJobRepo) FetchAndMarkProcessing(ctx context.Context) (*model.AnalysisJob, error) {
	var job *model.AnalysisJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ex, err := getExecutor(r.pool, tx)
		if err != nil {
			return err
		}
		const fetch = `
SELECT ` + analysisJobColumns + `
FROM analysis_jobs
WHERE status='pending' AND NOT deleted
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`
		fetched, err := scanAnalysisJob(ex.QueryRow(ctx, fetch))
		if err != nil {
			return err
		}

		// Mark it processing so no other worker picks it up.
		fetched.Status = model.AnalysisJobStatusProcessing
		if err := r.saveIn(ctx, ex, fetched); err != nil {
			return err
		}
		job = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *analysisJobRepo) saveIn(ctx context.Context, ex executor, job *model.AnalysisJob) error {
	results, err := json.Marshal(job.Results)
	if err != nil {
		return err
	}
	job.UpdatedAt = time.Now()
	const q = `
UPDATE analysis_jobs SET
  status=$2, deleted=$3, results=$4, cost=$5, last_error=$6, updated_at=$7
WHERE id=$1;`
	_, err = ex.Exec(ctx, q, job.ID, string(job.Status), job.Deleted, results, job.Cost, job.LastError, job.UpdatedAt)
	return err
}
