package model

import "time"

type PerformanceMetricStatus string

const (
	PerformanceMetricInProgress PerformanceMetricStatus = "in-progress"
	PerformanceMetricCompleted  PerformanceMetricStatus = "completed"
)

// PerformanceMetric is one timed interval during which a student worked
// on a single task. At most one metric per (StudentUID, ClassID) is
// in-progress at any instant.
type PerformanceMetric struct {
	ID         string
	StudentUID string
	ClassID    string
	TaskName   string
	StartTime  time.Time
	EndTime    time.Time
	// Duration is whole seconds between StartTime and EndTime, set on close.
	Duration int64
	Status   PerformanceMetricStatus
}

func NewPerformanceMetric(id, studentUID, classID, taskName string, startedAt time.Time) *PerformanceMetric {
	return &PerformanceMetric{
		ID:         id,
		StudentUID: studentUID,
		ClassID:    classID,
		TaskName:   taskName,
		StartTime:  startedAt,
		Status:     PerformanceMetricInProgress,
	}
}

// Close ends the interval at the given instant. Timestamps are
// monotonically non-decreasing per student upstream, so the duration is
// never negative.
func (m *PerformanceMetric) Close(at time.Time) {
	m.EndTime = at
	m.Duration = int64(at.Sub(m.StartTime) / time.Second)
	m.Status = PerformanceMetricCompleted
}
