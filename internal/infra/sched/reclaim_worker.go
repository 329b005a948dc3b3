package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/infra/metrics"
	"classroom-ai-assistant/internal/usecase"
)

// ReclaimWorker periodically fails video jobs stuck in processing via the use case.
type ReclaimWorker struct {
	interval time.Duration
	reclaim  usecase.ReclaimUseCase
	log      *zerolog.Logger
}

func NewReclaimWorker(interval time.Duration, reclaim usecase.ReclaimUseCase, logger *zerolog.Logger) *ReclaimWorker {
	wLog := logger.With().Str("component", "ReclaimWorker").Logger()
	return &ReclaimWorker{
		interval: interval,
		reclaim:  reclaim,
		log:      &wLog,
	}
}

func (w *ReclaimWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting reclaim worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping reclaim worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.reclaim.ReclaimStuck(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("reclaim sweep error")
			}
			if n > 0 {
				metrics.IncJobsReclaimed(n)
				w.log.Info().Int("count", n).Msg("stuck video jobs reclaimed")
			}
		}
	}
}
