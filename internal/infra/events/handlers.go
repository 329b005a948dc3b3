package events

import (
	"context"
	"fmt"

	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/infra/metrics"
	"classroom-ai-assistant/internal/usecase"
)

// VideoJobHandler feeds capture-job transitions into the completion
// detector. When the transition completes a session, the created
// analysis job is published back onto the feed as an analysis_jobs
// record so ledger subscribers observe it.
func VideoJobHandler(completion usecase.CompletionUseCase, pub *Dispatcher) Handler {
	return func(ctx context.Context, rec Record) error {
		after, ok := rec.After.(*model.VideoJob)
		if !ok {
			return fmt.Errorf("video_jobs record %s: unexpected payload %T", rec.ID, rec.After)
		}
		before, _ := rec.Before.(*model.VideoJob)
		job, err := completion.HandleStatusChange(ctx, before, after)
		if err != nil {
			return err
		}
		if job == nil {
			return nil
		}
		metrics.IncAnalysisDispatched()
		return pub.Publish(Record{
			Collection: "analysis_jobs",
			ID:         job.ID,
			Kind:       KindCreated,
			After:      job,
		})
	}
}

// TaskObservationHandler feeds screenshot task samples into the timer.
func TaskObservationHandler(timer usecase.TaskTimerUseCase) Handler {
	return func(ctx context.Context, rec Record) error {
		obs, ok := rec.After.(*model.TaskObservation)
		if !ok {
			return fmt.Errorf("task_observations record %s: unexpected payload %T", rec.ID, rec.After)
		}
		return timer.ObserveTask(ctx, *obs)
	}
}

// AnalysisJobHandler mirrors analysis-job records into the usage
// ledger. Freshly created jobs carry zero cost and no-op; records that
// carry cost increment the class counter.
func AnalysisJobHandler(usageUC usecase.UsageUseCase) Handler {
	return func(ctx context.Context, rec Record) error {
		job, ok := rec.After.(*model.AnalysisJob)
		if !ok {
			return fmt.Errorf("analysis_jobs record %s: unexpected payload %T", rec.ID, rec.After)
		}
		return usageUC.RecordJobCost(ctx, job.ClassID, job.Cost)
	}
}
