package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ ReclaimUseCase = (*reclaimUC)(nil)

// ReclaimUseCase marks capture jobs stuck in processing past the
// staleness window as failed. Re-running after a partial failure only
// re-targets jobs still matching the predicate.
type ReclaimUseCase interface {
	ReclaimStuck(ctx context.Context) (int, error)
}

type reclaimUC struct {
	videoJobs repository.VideoJobRepository
	timeout   time.Duration
	log       *zerolog.Logger
}

func NewReclaimUseCase(videoJobs repository.VideoJobRepository, timeout time.Duration, logger *zerolog.Logger) *reclaimUC {
	if timeout <= 0 {
		timeout = 120 * time.Minute
	}
	l := logger.With().Str("component", "ReclaimUC").Logger()
	return &reclaimUC{videoJobs: videoJobs, timeout: timeout, log: &l}
}

func (r *reclaimUC) ReclaimStuck(ctx context.Context) (int, error) {
	now := time.Now()
	cutoff := now.Add(-r.timeout)

	stuck, err := r.videoJobs.FindStuck(ctx, repository.NoTX, cutoff)
	if err != nil {
		return 0, err
	}
	if len(stuck) == 0 {
		r.log.Debug().Msg("no stuck jobs")
		return 0, nil
	}

	reason := fmt.Sprintf("processing exceeded %s, reclaimed as failed", r.timeout)
	n, err := r.videoJobs.MarkFailed(ctx, stuck, now, reason)
	if err != nil {
		return n, err
	}
	r.log.Info().Int("count", n).Dur("timeout", r.timeout).Msg("stuck jobs reclaimed")
	return n, nil
}
