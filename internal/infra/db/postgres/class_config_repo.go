package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
)

var _ repository.ClassConfigRepository = (*classConfigRepo)(nil)

// classConfigRepo reads the externally-owned classes table. The roster
// is stored as a jsonb uid->email map.
type classConfigRepo struct {
	pool *pgxpool.Pool
}

func NewClassConfigRepo(pool *pgxpool.Pool) *classConfigRepo {
	return &classConfigRepo{pool: pool}
}

func (r *classConfigRepo) FindByID(ctx context.Context, tx repository.Tx, classID string) (*model.ClassConfig, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT id, students, time_zone, automatic_combine, after_class_video_prompt
FROM classes WHERE id=$1;`
	var c model.ClassConfig
	var students []byte
	err = ex.QueryRow(ctx, q, classID).Scan(&c.ID, &students, &c.TimeZone, &c.AutomaticCombine, &c.AfterClassVideoPrompt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if len(students) > 0 {
		if err := json.Unmarshal(students, &c.Students); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return &c, nil
}
