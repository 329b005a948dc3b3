package postgres

import (
	"context"

	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
	"classroom-ai-assistant/internal/infra/metrics"
	red "classroom-ai-assistant/internal/infra/redis"
)

var _ repository.ClassConfigRepository = (*cachedClassConfigRepo)(nil)

// cachedClassConfigRepo is a read-through cache in front of the classes
// table. Cache failures degrade to the database, never to an error.
type cachedClassConfigRepo struct {
	inner repository.ClassConfigRepository
	cache *red.ClassCache
	log   *zerolog.Logger
}

func NewCachedClassConfigRepo(inner repository.ClassConfigRepository, cache *red.ClassCache, logger *zerolog.Logger) *cachedClassConfigRepo {
	l := logger.With().Str("component", "ClassConfigCache").Logger()
	return &cachedClassConfigRepo{inner: inner, cache: cache, log: &l}
}

func (r *cachedClassConfigRepo) FindByID(ctx context.Context, tx repository.Tx, classID string) (*model.ClassConfig, error) {
	if class, err := r.cache.Get(ctx, classID); err != nil {
		r.log.Warn().Err(err).Str("class_id", classID).Msg("cache read failed")
		// A corrupt or unreadable entry would fail every lookup until
		// its TTL; drop it and refill from the database.
		if delErr := r.cache.Invalidate(ctx, classID); delErr != nil {
			r.log.Warn().Err(delErr).Str("class_id", classID).Msg("cache invalidate failed")
		}
	} else if class != nil {
		metrics.IncClassCache(true)
		return class, nil
	}
	metrics.IncClassCache(false)

	class, err := r.inner.FindByID(ctx, tx, classID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Store(ctx, class); err != nil {
		r.log.Warn().Err(err).Str("class_id", classID).Msg("cache write failed")
	}
	return class, nil
}
