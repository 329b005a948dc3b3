package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/infra/metrics"
	"classroom-ai-assistant/internal/usecase"
)

// AnalysisProcessor polls for queued analysis jobs and hands them to the
// worker pool. Claiming uses row locks, so multiple replicas can run the
// same loop without stepping on each other.
type AnalysisProcessor struct {
	runner   usecase.AnalysisRunUseCase
	interval time.Duration
	log      *zerolog.Logger
}

func NewAnalysisProcessor(runner usecase.AnalysisRunUseCase, interval time.Duration, logger *zerolog.Logger) *AnalysisProcessor {
	procLog := logger.With().Str("component", "AnalysisProcessor").Logger()
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &AnalysisProcessor{runner: runner, interval: interval, log: &procLog}
}

// Start runs the polling loop. This should be run in a goroutine.
func (p *AnalysisProcessor) Start(ctx context.Context, pool *Pool) {
	p.log.Info().Dur("interval", p.interval).Msg("analysis processor started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("analysis processor stopping")
			return
		case <-ticker.C:
			_ = pool.Submit(func(ctx context.Context) error {
				processed, err := p.runner.ProcessOne(ctx)
				if processed {
					status := string(model.AnalysisJobStatusCompleted)
					if err != nil {
						status = string(model.AnalysisJobStatusFailed)
					}
					metrics.IncAnalysisJob(status)
				}
				if err != nil {
					p.log.Error().Err(err).Msg("analysis job processing failed")
					return nil
				}
				if processed {
					// Drain the queue without waiting for the next tick.
					_ = pool.Submit(func(ctx context.Context) error {
						_, err := p.runner.ProcessOne(ctx)
						return err
					})
				}
				return nil
			})
		}
	}
}
