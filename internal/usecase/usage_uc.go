package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ UsageUseCase = (*usageUC)(nil)

// UsageUseCase maintains the monotonic per-class cost counter.
type UsageUseCase interface {
	// RecordJobCost adds cost to the class counter. Records without a
	// class or with a non-positive cost are a no-op.
	RecordJobCost(ctx context.Context, classID string, cost float64) error
}

type usageUC struct {
	usage repository.UsageRepository
	log   *zerolog.Logger
}

func NewUsageUseCase(usage repository.UsageRepository, logger *zerolog.Logger) *usageUC {
	l := logger.With().Str("component", "UsageUC").Logger()
	return &usageUC{usage: usage, log: &l}
}

func (u *usageUC) RecordJobCost(ctx context.Context, classID string, cost float64) error {
	if classID == "" || cost <= 0 {
		return nil
	}
	if err := u.usage.AddCost(ctx, repository.NoTX, classID, cost); err != nil {
		return err
	}
	u.log.Debug().Str("class_id", classID).Float64("cost", cost).Msg("usage counter incremented")
	return nil
}
