//go:build !integration

package usecase_test

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/adapter"
	"classroom-ai-assistant/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- VideoJobRepository ----

type MockVideoJobRepo struct {
	FindByIDFunc               func(ctx context.Context, tx repository.Tx, id string) (*model.VideoJob, error)
	SaveFunc                   func(ctx context.Context, tx repository.Tx, job *model.VideoJob) error
	FindBySessionFunc          func(ctx context.Context, tx repository.Tx, classID string, start, end time.Time) ([]*model.VideoJob, error)
	CountTerminalBySessionFunc func(ctx context.Context, tx repository.Tx, classID string, start, end time.Time) (int, error)
	FindStuckFunc              func(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.VideoJob, error)
	MarkFailedFunc             func(ctx context.Context, jobs []*model.VideoJob, finishedAt time.Time, reason string) (int, error)
}

func NewMockVideoJobRepo() *MockVideoJobRepo { return &MockVideoJobRepo{} }

func (m *MockVideoJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.VideoJob, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockVideoJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.VideoJob) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, job)
	}
	return nil
}

func (m *MockVideoJobRepo) FindBySession(ctx context.Context, tx repository.Tx, classID string, start, end time.Time) ([]*model.VideoJob, error) {
	if m.FindBySessionFunc != nil {
		return m.FindBySessionFunc(ctx, tx, classID, start, end)
	}
	return nil, nil
}

func (m *MockVideoJobRepo) CountTerminalBySession(ctx context.Context, tx repository.Tx, classID string, start, end time.Time) (int, error) {
	if m.CountTerminalBySessionFunc != nil {
		return m.CountTerminalBySessionFunc(ctx, tx, classID, start, end)
	}
	return 0, nil
}

func (m *MockVideoJobRepo) FindStuck(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.VideoJob, error) {
	if m.FindStuckFunc != nil {
		return m.FindStuckFunc(ctx, tx, cutoff)
	}
	return nil, nil
}

func (m *MockVideoJobRepo) MarkFailed(ctx context.Context, jobs []*model.VideoJob, finishedAt time.Time, reason string) (int, error) {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, jobs, finishedAt, reason)
	}
	return len(jobs), nil
}

// ---- AnalysisJobRepository ----

type MockAnalysisJobRepo struct {
	FindByIDFunc               func(ctx context.Context, tx repository.Tx, id string) (*model.AnalysisJob, error)
	ExistsFunc                 func(ctx context.Context, tx repository.Tx, id string) (bool, error)
	CreateIfAbsentFunc         func(ctx context.Context, tx repository.Tx, job *model.AnalysisJob) (bool, error)
	SaveFunc                   func(ctx context.Context, tx repository.Tx, job *model.AnalysisJob) error
	FetchAndMarkProcessingFunc func(ctx context.Context) (*model.AnalysisJob, error)
}

func NewMockAnalysisJobRepo() *MockAnalysisJobRepo { return &MockAnalysisJobRepo{} }

func (m *MockAnalysisJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AnalysisJob, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockAnalysisJobRepo) Exists(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, tx, id)
	}
	return false, nil
}

func (m *MockAnalysisJobRepo) CreateIfAbsent(ctx context.Context, tx repository.Tx, job *model.AnalysisJob) (bool, error) {
	if m.CreateIfAbsentFunc != nil {
		return m.CreateIfAbsentFunc(ctx, tx, job)
	}
	return true, nil
}

func (m *MockAnalysisJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.AnalysisJob) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, job)
	}
	return nil
}

func (m *MockAnalysisJobRepo) FetchAndMarkProcessing(ctx context.Context) (*model.AnalysisJob, error) {
	if m.FetchAndMarkProcessingFunc != nil {
		return m.FetchAndMarkProcessingFunc(ctx)
	}
	return nil, domain.ErrNotFound
}

// ---- PerformanceMetricRepository ----

type MockMetricRepo struct {
	FindOpenFunc func(ctx context.Context, tx repository.Tx, studentUID, classID string) (*model.PerformanceMetric, error)
	SaveFunc     func(ctx context.Context, tx repository.Tx, metric *model.PerformanceMetric) error
}

func NewMockMetricRepo() *MockMetricRepo { return &MockMetricRepo{} }

func (m *MockMetricRepo) FindOpen(ctx context.Context, tx repository.Tx, studentUID, classID string) (*model.PerformanceMetric, error) {
	if m.FindOpenFunc != nil {
		return m.FindOpenFunc(ctx, tx, studentUID, classID)
	}
	return nil, domain.ErrNotFound
}

func (m *MockMetricRepo) Save(ctx context.Context, tx repository.Tx, metric *model.PerformanceMetric) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, metric)
	}
	return nil
}

// ---- ScreenshotEventRepository ----

type MockEventRepo struct {
	SaveFunc        func(ctx context.Context, tx repository.Tx, event *model.ScreenshotEvent) error
	FindInRangeFunc func(ctx context.Context, tx repository.Tx, classID string, from, to time.Time) ([]*model.ScreenshotEvent, error)
	DeleteRangeFunc func(ctx context.Context, classID string, from, to time.Time) (int, error)
}

func NewMockEventRepo() *MockEventRepo { return &MockEventRepo{} }

func (m *MockEventRepo) Save(ctx context.Context, tx repository.Tx, event *model.ScreenshotEvent) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, event)
	}
	return nil
}

func (m *MockEventRepo) FindInRange(ctx context.Context, tx repository.Tx, classID string, from, to time.Time) ([]*model.ScreenshotEvent, error) {
	if m.FindInRangeFunc != nil {
		return m.FindInRangeFunc(ctx, tx, classID, from, to)
	}
	return nil, nil
}

func (m *MockEventRepo) DeleteRange(ctx context.Context, classID string, from, to time.Time) (int, error) {
	if m.DeleteRangeFunc != nil {
		return m.DeleteRangeFunc(ctx, classID, from, to)
	}
	return 0, nil
}

// ---- ClassConfigRepository ----

type MockClassRepo struct {
	FindByIDFunc func(ctx context.Context, tx repository.Tx, classID string) (*model.ClassConfig, error)
}

func NewMockClassRepo() *MockClassRepo { return &MockClassRepo{} }

func (m *MockClassRepo) FindByID(ctx context.Context, tx repository.Tx, classID string) (*model.ClassConfig, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, classID)
	}
	return nil, domain.ErrNotFound
}

// ---- UsageRepository ----

type MockUsageRepo struct {
	AddCostFunc     func(ctx context.Context, tx repository.Tx, classID string, cost float64) error
	FindByClassFunc func(ctx context.Context, tx repository.Tx, classID string) (*model.UsageCounter, error)
}

func NewMockUsageRepo() *MockUsageRepo { return &MockUsageRepo{} }

func (m *MockUsageRepo) AddCost(ctx context.Context, tx repository.Tx, classID string, cost float64) error {
	if m.AddCostFunc != nil {
		return m.AddCostFunc(ctx, tx, classID, cost)
	}
	return nil
}

func (m *MockUsageRepo) FindByClass(ctx context.Context, tx repository.Tx, classID string) (*model.UsageCounter, error) {
	if m.FindByClassFunc != nil {
		return m.FindByClassFunc(ctx, tx, classID)
	}
	return nil, domain.ErrNotFound
}

// ---- AnalysisAdapter ----

type MockAnalysisAdapter struct {
	AnalyzeFunc func(ctx context.Context, prompt string, media map[string]adapter.MediaRef) (map[string]string, adapter.Usage, error)
}

func NewMockAnalysisAdapter() *MockAnalysisAdapter { return &MockAnalysisAdapter{} }

func (m *MockAnalysisAdapter) Analyze(ctx context.Context, prompt string, media map[string]adapter.MediaRef) (map[string]string, adapter.Usage, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, prompt, media)
	}
	out := make(map[string]string, len(media))
	for label := range media {
		out[label] = "ok"
	}
	return out, adapter.Usage{TotalTokens: 100}, nil
}

// ---- ObjectStorage ----

type MockObjectStorage struct {
	DeleteFunc func(ctx context.Context, path string) error
	ExistsFunc func(ctx context.Context, path string) (bool, error)
	Deleted    []string
}

func NewMockObjectStorage() *MockObjectStorage { return &MockObjectStorage{} }

func (m *MockObjectStorage) Delete(ctx context.Context, path string) error {
	m.Deleted = append(m.Deleted, path)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, path)
	}
	return nil
}

func (m *MockObjectStorage) Exists(ctx context.Context, path string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, path)
	}
	return true, nil
}
