package repository

import (
	"context"

	"classroom-ai-assistant/internal/domain/model"
)

type UsageRepository interface {
	// AddCost atomically adds cost to the class's running counter. The
	// increment happens in a single store-side update so concurrent job
	// creation never loses a write.
	AddCost(ctx context.Context, tx Tx, classID string, cost float64) error

	FindByClass(ctx context.Context, tx Tx, classID string) (*model.UsageCounter, error)
}
