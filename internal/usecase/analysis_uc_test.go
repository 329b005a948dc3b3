//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/adapter"
	"classroom-ai-assistant/internal/domain/ports/repository"
	"classroom-ai-assistant/internal/usecase"
)

func pendingAnalysisJob() *model.AnalysisJob {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	job := model.NewAutomaticAnalysisJob("class-1", start, start.Add(30*time.Minute), "summarize")
	job.Status = model.AnalysisJobStatusProcessing
	return job
}

func completedCapture(email, path string) *model.VideoJob {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &model.VideoJob{
		ID:           "vj-" + email,
		ClassID:      "class-1",
		StudentEmail: email,
		Status:       model.VideoJobStatusCompleted,
		MediaPath:    path,
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
	}
}

func TestAnalysisRunUseCase(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	t.Run("processes a pending job end to end", func(t *testing.T) {
		jobs := NewMockAnalysisJobRepo()
		job := pendingAnalysisJob()
		jobs.FetchAndMarkProcessingFunc = func(ctx context.Context) (*model.AnalysisJob, error) {
			return job, nil
		}
		var saved *model.AnalysisJob
		jobs.SaveFunc = func(ctx context.Context, tx repository.Tx, j *model.AnalysisJob) error {
			saved = j
			return nil
		}

		videoJobs := NewMockVideoJobRepo()
		videoJobs.FindBySessionFunc = func(ctx context.Context, tx repository.Tx, classID string, start, end time.Time) ([]*model.VideoJob, error) {
			return []*model.VideoJob{
				completedCapture("a@x.com", "captures/a.mp4"),
				completedCapture("b@x.com", "captures/b.mp4"),
				{ID: "vj-failed", ClassID: classID, Status: model.VideoJobStatusFailed},
			}, nil
		}

		usageRepo := NewMockUsageRepo()
		var ledgerCost float64
		usageRepo.AddCostFunc = func(ctx context.Context, tx repository.Tx, classID string, cost float64) error {
			ledgerCost = cost
			return nil
		}

		ai := NewMockAnalysisAdapter()
		ai.AnalyzeFunc = func(ctx context.Context, prompt string, media map[string]adapter.MediaRef) (map[string]string, adapter.Usage, error) {
			if len(media) != 2 {
				t.Fatalf("expected media for the 2 completed jobs, got %d", len(media))
			}
			out := map[string]string{}
			for label := range media {
				out[label] = "analysis of " + label
			}
			return out, adapter.Usage{TotalTokens: 2000}, nil
		}
		blobs := NewMockObjectStorage()

		uc := usecase.NewAnalysisRunUseCase(jobs, videoJobs, usecase.NewUsageUseCase(usageRepo, testLogger), ai, blobs, 0.5, testLogger)

		found, err := uc.ProcessOne(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !found {
			t.Fatal("expected a job to be processed")
		}
		if saved == nil || saved.Status != model.AnalysisJobStatusCompleted {
			t.Fatalf("job not saved as completed: %+v", saved)
		}
		if saved.Results["a@x.com"] == "" || saved.Results["b@x.com"] == "" {
			t.Errorf("per-label results missing: %v", saved.Results)
		}
		// 2000 tokens at 0.5 per thousand.
		if saved.Cost != 1.0 || ledgerCost != 1.0 {
			t.Errorf("cost = %v, ledger = %v, want 1.0", saved.Cost, ledgerCost)
		}
		if len(blobs.Deleted) != 2 {
			t.Errorf("expected both capture blobs deleted, got %v", blobs.Deleted)
		}
	})

	t.Run("no pending job is a quiet no-op", func(t *testing.T) {
		uc := usecase.NewAnalysisRunUseCase(NewMockAnalysisJobRepo(), NewMockVideoJobRepo(), usecase.NewUsageUseCase(NewMockUsageRepo(), testLogger), NewMockAnalysisAdapter(), NewMockObjectStorage(), 0.5, testLogger)
		found, err := uc.ProcessOne(ctx)
		if err != nil || found {
			t.Fatalf("expected quiet no-op, got found=%v err=%v", found, err)
		}
	})

	t.Run("adapter failure marks the job failed", func(t *testing.T) {
		jobs := NewMockAnalysisJobRepo()
		job := pendingAnalysisJob()
		jobs.FetchAndMarkProcessingFunc = func(ctx context.Context) (*model.AnalysisJob, error) {
			return job, nil
		}
		var saved *model.AnalysisJob
		jobs.SaveFunc = func(ctx context.Context, tx repository.Tx, j *model.AnalysisJob) error {
			saved = j
			return nil
		}
		videoJobs := NewMockVideoJobRepo()
		videoJobs.FindBySessionFunc = func(ctx context.Context, tx repository.Tx, classID string, start, end time.Time) ([]*model.VideoJob, error) {
			return []*model.VideoJob{completedCapture("a@x.com", "captures/a.mp4")}, nil
		}
		ai := NewMockAnalysisAdapter()
		ai.AnalyzeFunc = func(ctx context.Context, prompt string, media map[string]adapter.MediaRef) (map[string]string, adapter.Usage, error) {
			return nil, adapter.Usage{}, errors.New("provider unavailable")
		}

		uc := usecase.NewAnalysisRunUseCase(jobs, videoJobs, usecase.NewUsageUseCase(NewMockUsageRepo(), testLogger), ai, NewMockObjectStorage(), 0.5, testLogger)

		found, err := uc.ProcessOne(ctx)
		if !found || err == nil {
			t.Fatalf("expected a surfaced failure, got found=%v err=%v", found, err)
		}
		if saved == nil || saved.Status != model.AnalysisJobStatusFailed || saved.LastError == "" {
			t.Fatalf("job should be saved failed with the error recorded: %+v", saved)
		}
	})

	t.Run("failed blob delete never fails the job", func(t *testing.T) {
		jobs := NewMockAnalysisJobRepo()
		job := pendingAnalysisJob()
		jobs.FetchAndMarkProcessingFunc = func(ctx context.Context) (*model.AnalysisJob, error) {
			return job, nil
		}
		videoJobs := NewMockVideoJobRepo()
		videoJobs.FindBySessionFunc = func(ctx context.Context, tx repository.Tx, classID string, start, end time.Time) ([]*model.VideoJob, error) {
			return []*model.VideoJob{completedCapture("a@x.com", "captures/a.mp4")}, nil
		}
		blobs := NewMockObjectStorage()
		blobs.DeleteFunc = func(ctx context.Context, path string) error {
			return errors.New("bucket unreachable")
		}

		uc := usecase.NewAnalysisRunUseCase(jobs, videoJobs, usecase.NewUsageUseCase(NewMockUsageRepo(), testLogger), NewMockAnalysisAdapter(), blobs, 0.5, testLogger)

		found, err := uc.ProcessOne(ctx)
		if err != nil || !found {
			t.Fatalf("blob delete failure must stay best-effort: found=%v err=%v", found, err)
		}
		if job.Status != model.AnalysisJobStatusCompleted {
			t.Errorf("job status = %s, want completed", job.Status)
		}
	})

	t.Run("missing capture blob is skipped", func(t *testing.T) {
		jobs := NewMockAnalysisJobRepo()
		job := pendingAnalysisJob()
		jobs.FetchAndMarkProcessingFunc = func(ctx context.Context) (*model.AnalysisJob, error) {
			return job, nil
		}
		videoJobs := NewMockVideoJobRepo()
		videoJobs.FindBySessionFunc = func(ctx context.Context, tx repository.Tx, classID string, start, end time.Time) ([]*model.VideoJob, error) {
			return []*model.VideoJob{
				completedCapture("a@x.com", "captures/a.mp4"),
				completedCapture("b@x.com", "captures/gone.mp4"),
			}, nil
		}
		blobs := NewMockObjectStorage()
		blobs.ExistsFunc = func(ctx context.Context, path string) (bool, error) {
			return path != "captures/gone.mp4", nil
		}
		ai := NewMockAnalysisAdapter()
		ai.AnalyzeFunc = func(ctx context.Context, prompt string, media map[string]adapter.MediaRef) (map[string]string, adapter.Usage, error) {
			if len(media) != 1 {
				t.Fatalf("expected only the present blob, got %d refs", len(media))
			}
			if _, ok := media["a@x.com"]; !ok {
				t.Fatalf("wrong media retained: %v", media)
			}
			return map[string]string{"a@x.com": "ok"}, adapter.Usage{TotalTokens: 100}, nil
		}

		uc := usecase.NewAnalysisRunUseCase(jobs, videoJobs, usecase.NewUsageUseCase(NewMockUsageRepo(), testLogger), ai, blobs, 0.5, testLogger)

		found, err := uc.ProcessOne(ctx)
		if err != nil || !found {
			t.Fatalf("expected success, got found=%v err=%v", found, err)
		}
		if job.Status != model.AnalysisJobStatusCompleted {
			t.Errorf("job status = %s, want completed", job.Status)
		}
	})

	t.Run("session with no completed media fails the job", func(t *testing.T) {
		jobs := NewMockAnalysisJobRepo()
		job := pendingAnalysisJob()
		jobs.FetchAndMarkProcessingFunc = func(ctx context.Context) (*model.AnalysisJob, error) {
			return job, nil
		}
		videoJobs := NewMockVideoJobRepo()
		videoJobs.FindBySessionFunc = func(ctx context.Context, tx repository.Tx, classID string, start, end time.Time) ([]*model.VideoJob, error) {
			return []*model.VideoJob{
				{ID: "vj1", ClassID: classID, Status: model.VideoJobStatusFailed},
			}, nil
		}

		uc := usecase.NewAnalysisRunUseCase(jobs, videoJobs, usecase.NewUsageUseCase(NewMockUsageRepo(), testLogger), NewMockAnalysisAdapter(), NewMockObjectStorage(), 0.5, testLogger)

		found, err := uc.ProcessOne(ctx)
		if !found || err == nil {
			t.Fatalf("expected failure, got found=%v err=%v", found, err)
		}
		if job.Status != model.AnalysisJobStatusFailed {
			t.Errorf("job status = %s, want failed", job.Status)
		}
	})
}
