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

var _ repository.UsageRepository = (*usageRepo)(nil)

type usageRepo struct {
	pool *pgxpool.Pool
}

func NewUsageRepo(pool *pgxpool.Pool) *usageRepo {
	return &usageRepo{pool: pool}
}

// AddCost is a single additive upsert; the increment happens at the
// store, so concurrent job creation never loses a write.
func (r *usageRepo) AddCost(ctx context.Context, tx repository.Tx, classID string, cost float64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO usage_counters (class_id, total_cost)
VALUES ($1, $2)
ON CONFLICT (class_id) DO UPDATE SET
  total_cost = usage_counters.total_cost + EXCLUDED.total_cost;`
	_, err = ex.Exec(ctx, q, classID, cost)
	return err
}

func (r *usageRepo) FindByClass(ctx context.Context, tx repository.Tx, classID string) (*model.UsageCounter, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT class_id, total_cost FROM usage_counters WHERE class_id=$1;`
	var c model.UsageCounter
	if err := ex.QueryRow(ctx, q, classID).Scan(&c.ClassID, &c.TotalCost); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}
