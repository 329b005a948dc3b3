package repository

import (
	"context"
	"time"

	"classroom-ai-assistant/internal/domain/model"
)

type ScreenshotEventRepository interface {
	Save(ctx context.Context, tx Tx, event *model.ScreenshotEvent) error

	// FindInRange returns the class's events with Timestamp in the
	// closed interval [from, to]. Callers query in bounded chunks.
	FindInRange(ctx context.Context, tx Tx, classID string, from, to time.Time) ([]*model.ScreenshotEvent, error)

	// DeleteRange removes the class's events within [from, to] using a
	// paginated cursor and batched deletes, flushing below the store's
	// per-batch mutation ceiling. Returns the number deleted.
	DeleteRange(ctx context.Context, classID string, from, to time.Time) (int, error)
}
