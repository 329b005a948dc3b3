package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
)

var _ repository.ScreenshotEventRepository = (*screenshotEventRepo)(nil)

type screenshotEventRepo struct {
	pool *pgxpool.Pool
}

func NewScreenshotEventRepo(pool *pgxpool.Pool) *screenshotEventRepo {
	return &screenshotEventRepo{pool: pool}
}

func (r *screenshotEventRepo) Save(ctx context.Context, tx repository.Tx, event *model.ScreenshotEvent) error {
	if event.ID == "" {
		event.ID = ulid.Make().String()
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO screenshot_events (id, class_id, email, ts)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO NOTHING;`
	_, err = ex.Exec(ctx, q, event.ID, event.ClassID, event.Email, event.Timestamp)
	return err
}

func (r *screenshotEventRepo) FindInRange(ctx context.Context, tx repository.Tx, classID string, from, to time.Time) ([]*model.ScreenshotEvent, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	// Closed-closed range; callers chunk the window.
	const q = `
SELECT id, class_id, email, ts
FROM screenshot_events
WHERE class_id=$1 AND ts >= $2 AND ts <= $3
ORDER BY ts;`
	rows, err := ex.Query(ctx, q, classID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ScreenshotEvent
	for rows.Next() {
		var ev model.ScreenshotEvent
		if err := rows.Scan(&ev.ID, &ev.ClassID, &ev.Email, &ev.Timestamp); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// DeleteRange pages ids with a cursor and deletes them in batches below
// the per-batch mutation ceiling. Each page is flushed before the next
// is fetched, so a crash leaves a resumable state.
func (r *screenshotEventRepo) DeleteRange(ctx context.Context, classID string, from, to time.Time) (int, error) {
	const page = `
SELECT id FROM screenshot_events
WHERE class_id=$1 AND ts >= $2 AND ts <= $3 AND id > $4
ORDER BY id
LIMIT $5;`
	const del = `DELETE FROM screenshot_events WHERE id=$1;`

	deleted := 0
	cursor := ""
	for {
		rows, err := r.pool.Query(ctx, page, classID, from, to, cursor, maxBatchMutations)
		if err != nil {
			return deleted, err
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return deleted, domain.ErrReadDatabaseRow
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return deleted, err
		}
		if len(ids) == 0 {
			return deleted, nil
		}

		batch := &pgx.Batch{}
		for _, id := range ids {
			batch.Queue(del, id)
		}
		br := r.pool.SendBatch(ctx, batch)
		for range ids {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return deleted, err
			}
			deleted++
		}
		if err := br.Close(); err != nil {
			return deleted, err
		}
		cursor = ids[len(ids)-1]
	}
}
