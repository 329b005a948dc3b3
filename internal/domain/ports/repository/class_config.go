package repository

import (
	"context"

	"classroom-ai-assistant/internal/domain/model"
)

// ClassConfigRepository reads the externally-owned class records. This
// core never writes them.
type ClassConfigRepository interface {
	FindByID(ctx context.Context, tx Tx, classID string) (*model.ClassConfig, error)
}
